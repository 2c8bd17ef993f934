package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mbs-hub/internal/auth"
	"mbs-hub/internal/common"
	"mbs-hub/internal/middleware"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxInputBytes = 1 << 20

// procedureFunc runs one procedure with its raw JSON input.
type procedureFunc func(r *http.Request, input json.RawMessage) (interface{}, error)

type procedure struct {
	kind string
	call procedureFunc
}

// RPC is a registry of named procedures served under /api/trpc/{procedure}.
// Queries are invoked with GET and a JSON "input" query parameter, mutations
// with POST and a JSON body. Successful calls answer {"result":{"data":...}}.
type RPC struct {
	procedures map[string]procedure
	validate   *validator.Validate
}

func newRPC() *RPC {
	v := validator.New()
	// Report JSON field names in validation errors.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RPC{procedures: make(map[string]procedure), validate: v}
}

func (p *RPC) query(name string, call procedureFunc) {
	p.procedures[name] = procedure{kind: auth.ActQuery, call: call}
}

func (p *RPC) mutation(name string, call procedureFunc) {
	p.procedures[name] = procedure{kind: auth.ActMutation, call: call}
}

// Kind reports whether name is registered and whether it is a query or a mutation.
func (p *RPC) Kind(name string) (string, bool) {
	proc, ok := p.procedures[name]
	return proc.kind, ok
}

// Names lists the registered procedures.
func (p *RPC) Names() []string {
	names := make([]string, 0, len(p.procedures))
	for name := range p.procedures {
		names = append(names, name)
	}
	return names
}

func (p *RPC) serve(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	name := chi.URLParam(r, "procedure")
	proc, ok := p.procedures[name]
	if !ok {
		return &middleware.AppError{
			Message: fmt.Sprintf("No procedure found on path %q", name),
			Code:    http.StatusNotFound,
			RPCCode: middleware.CodeNotFound,
		}
	}

	input, appErr := readInput(w, r, proc.kind)
	if appErr != nil {
		return appErr
	}

	out, err := proc.call(r, input)
	if err != nil {
		return middleware.FromError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]map[string]interface{}{
		"result": {"data": out},
	}); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to encode response", Code: http.StatusInternalServerError}
	}
	return nil
}

func readInput(w http.ResponseWriter, r *http.Request, kind string) (json.RawMessage, *middleware.AppError) {
	switch {
	case kind == auth.ActQuery && r.Method == http.MethodGet:
		if raw := r.URL.Query().Get("input"); raw != "" {
			return json.RawMessage(raw), nil
		}
		return nil, nil
	case kind == auth.ActMutation && r.Method == http.MethodPost:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInputBytes))
		if err != nil {
			return nil, middleware.FromError(common.NewValidationError("input", "request body is too large or unreadable"))
		}
		return body, nil
	}
	want := http.MethodGet
	if kind == auth.ActMutation {
		want = http.MethodPost
	}
	return nil, &middleware.AppError{
		Message: fmt.Sprintf("Unsupported %s-request to %s procedure", r.Method, kind),
		Code:    http.StatusMethodNotAllowed,
		RPCCode: middleware.CodeMethodNotSupported,
		Error:   fmt.Errorf("expected %s", want),
	}
}

// bind decodes raw into a T and validates its struct tags. Absent input
// decodes as the zero T, so required fields still fail.
func bind[T any](v *validator.Validate, raw json.RawMessage) (T, error) {
	var in T
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &in); err != nil {
			return in, common.NewValidationError("input", "malformed JSON input")
		}
	}
	if err := v.Struct(in); err != nil {
		return in, toValidationError(err)
	}
	return in, nil
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return common.NewValidationError("input", err.Error())
	}
	fe := fieldErrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "email":
		msg = "must be a valid email address"
	case "min":
		msg = "must be at least " + fe.Param()
	case "max":
		msg = "must be at most " + fe.Param()
	default:
		msg = "failed " + fe.Tag() + " validation"
	}
	return common.NewValidationError(fe.Field(), msg)
}
