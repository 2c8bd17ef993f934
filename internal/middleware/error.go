package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"mbs-hub/internal/common"
	"mbs-hub/internal/logger"
	"net/http"
)

// Error codes of the JSON error envelope.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotSupported = "METHOD_NOT_SUPPORTED"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
)

// AppError represents a custom error type for the application.
type AppError struct {
	Error   error
	Message string
	Code    int
	RPCCode string
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

type errorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"httpStatus"`
}

// WriteError writes the JSON error envelope.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]errorBody{
		"error": {Code: code, Message: message, HTTPStatus: status},
	})
}

// FromError classifies err into an AppError. Store failure details stay
// server side; PublicError messages are shown as-is.
func FromError(err error) *AppError {
	var ve *common.ValidationError
	var pe *common.PublicError
	switch {
	case errors.As(err, &ve):
		return &AppError{Error: err, Message: ve.Error(), Code: http.StatusBadRequest, RPCCode: CodeBadRequest}
	case errors.Is(err, common.ErrForbidden):
		return &AppError{Error: err, Message: "Forbidden", Code: http.StatusForbidden, RPCCode: CodeForbidden}
	case errors.As(err, &pe):
		code, rpc := http.StatusInternalServerError, CodeInternal
		if errors.Is(err, common.ErrUnconfigured) {
			code, rpc = http.StatusServiceUnavailable, CodeUnavailable
		}
		return &AppError{Error: err, Message: pe.Message, Code: code, RPCCode: rpc}
	case errors.Is(err, common.ErrUnconfigured):
		return &AppError{Error: err, Message: "Content store is not configured", Code: http.StatusServiceUnavailable, RPCCode: CodeUnavailable}
	default:
		return &AppError{Error: err, Message: "Internal server error", Code: http.StatusInternalServerError, RPCCode: CodeInternal}
	}
}

// Error is a middleware that converts handler errors into JSON error responses.
func Error(log logger.Logger) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					WriteError(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
				}
			}()

			if appErr := next(w, r); appErr != nil {
				if appErr.Code >= http.StatusInternalServerError {
					log.Error(appErr.Error, appErr.Message)
				} else if appErr.Error != nil {
					log.Debug(fmt.Sprintf("%s: %v", appErr.Message, appErr.Error))
				}
				code := appErr.RPCCode
				if code == "" {
					code = CodeInternal
				}
				WriteError(w, appErr.Code, code, appErr.Message)
			}
		})
	}
}
