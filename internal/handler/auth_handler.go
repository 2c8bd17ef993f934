package handler

import (
	"errors"
	"mbs-hub/internal/auth"
	"mbs-hub/internal/logger"
	"mbs-hub/internal/middleware"
	"mbs-hub/internal/service"
	"mbs-hub/internal/session"
	"net/http"
	"strings"
)

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	auth     Authenticator
	state    *auth.StateSigner
	sessions session.Manager
	users    LoginServicer
	log      logger.Logger
}

// NewAuthHandler creates a new AuthHandler. A nil Authenticator makes the
// login routes answer 503.
func NewAuthHandler(a Authenticator, state *auth.StateSigner, sm session.Manager, users LoginServicer, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: a, state: state, sessions: sm, users: users, log: log}
}

var errOAuthUnconfigured = &middleware.AppError{
	Message: "Sign-in is not configured",
	Code:    http.StatusServiceUnavailable,
	RPCCode: middleware.CodeUnavailable,
}

// handleLogin redirects the user to the OIDC provider to log in.
// The state parameter is a signed token whose nonce is kept in the session.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if h.auth == nil {
		return errOAuthUnconfigured
	}
	state, nonce, err := h.state.Issue(safeReturnTo(r.URL.Query().Get("returnTo")))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to start sign-in", Code: http.StatusInternalServerError}
	}
	h.sessions.Put(r.Context(), session.KeyOAuthNonce, nonce)
	http.Redirect(w, r, h.auth.LoginURL(state), http.StatusFound)
	return nil
}

// handleCallback is the redirect URL for the OIDC provider.
// It checks the state, exchanges the code, records the sign-in and starts a
// fresh session.
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if h.auth == nil {
		return errOAuthUnconfigured
	}
	ctx := r.Context()
	q := r.URL.Query()

	if msg := q.Get("error"); msg != "" {
		return &middleware.AppError{
			Error:   errors.New(msg),
			Message: "Sign-in was cancelled or failed",
			Code:    http.StatusBadRequest,
			RPCCode: middleware.CodeBadRequest,
		}
	}

	// The nonce is single use.
	nonce := h.sessions.PopString(ctx, session.KeyOAuthNonce)
	claims, err := h.state.Verify(q.Get("state"), nonce)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid sign-in state", Code: http.StatusBadRequest, RPCCode: middleware.CodeBadRequest}
	}

	code := q.Get("code")
	if code == "" {
		return &middleware.AppError{Message: "Missing authorization code", Code: http.StatusBadRequest, RPCCode: middleware.CodeBadRequest}
	}

	identity, err := h.auth.Authenticate(ctx, code)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to authenticate", Code: http.StatusBadGateway, RPCCode: middleware.CodeInternal}
	}

	user, err := h.users.Login(ctx, service.Identity{OpenID: identity.Subject, Name: identity.Name, Email: identity.Email})
	if err != nil {
		return middleware.FromError(err)
	}

	// Rotate the token on privilege change to prevent fixation.
	if err := h.sessions.RenewToken(ctx); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to start session", Code: http.StatusInternalServerError}
	}
	h.sessions.Put(ctx, session.KeyOpenID, user.OpenID)
	h.sessions.Put(ctx, session.KeyRole, string(user.Role))
	if user.Name != nil {
		h.sessions.Put(ctx, session.KeyName, *user.Name)
	}
	if user.Email != nil {
		h.sessions.Put(ctx, session.KeyEmail, *user.Email)
	}

	h.log.With(map[string]interface{}{"openId": user.OpenID, "role": user.Role}).Info("User signed in")
	http.Redirect(w, r, safeReturnTo(claims.ReturnTo), http.StatusFound)
	return nil
}

// safeReturnTo keeps redirects on this site.
func safeReturnTo(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}
