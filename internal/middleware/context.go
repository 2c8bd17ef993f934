package middleware

import (
	"context"
	"mbs-hub/internal/auth"
	"mbs-hub/internal/data"
	"mbs-hub/internal/session"
	"net/http"
)

// contextKey defines a custom type for context keys to avoid collisions.
type contextKey string

const userContextKey = contextKey("user")

// UserInfo represents the essential user information stored in the session and request context.
type UserInfo struct {
	OpenID string `json:"openId"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
}

// Anonymous reports whether the caller has no session.
func (u *UserInfo) Anonymous() bool {
	return u == nil || u.OpenID == ""
}

// GetUserInfo retrieves the user information from the request context.
func GetUserInfo(ctx context.Context) *UserInfo {
	if userInfo, ok := ctx.Value(userContextKey).(*UserInfo); ok {
		return userInfo
	}
	// Return an anonymous user if no user info is found in the context.
	return &UserInfo{Role: auth.RoleAnonymous}
}

// SetUserInfo adds the user information to the request context.
func SetUserInfo(ctx context.Context, userInfo *UserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, userInfo)
}

// LoadUser copies the signed-in user from the session into the request
// context. It must run inside the session manager's LoadAndSave.
func LoadUser(sm session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			user := &UserInfo{Role: auth.RoleAnonymous}
			if openID := sm.GetString(ctx, session.KeyOpenID); openID != "" {
				user = &UserInfo{
					OpenID: openID,
					Name:   sm.GetString(ctx, session.KeyName),
					Email:  sm.GetString(ctx, session.KeyEmail),
					Role:   sm.GetString(ctx, session.KeyRole),
				}
				if user.Role == "" {
					user.Role = string(data.RoleUser)
				}
			}
			next.ServeHTTP(w, r.WithContext(SetUserInfo(ctx, user)))
		})
	}
}
