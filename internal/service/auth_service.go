package service

import (
	"context"
	"errors"
	"fmt"
	"mbs-hub/internal/common"
	"mbs-hub/internal/data"
	"mbs-hub/internal/logger"
	"time"
)

// LoginMethodOIDC marks users who signed in through the OAuth server.
const LoginMethodOIDC = "oidc"

// Identity is what the OAuth server tells us about a user.
type Identity struct {
	OpenID string
	Name   string
	Email  string
}

// AuthService records sign-ins.
type AuthService struct {
	users  UserRepository
	policy data.RolePolicy
	now    func() time.Time
	log    logger.Logger
}

// NewAuthService creates a new AuthService. policy decides roles for users
// that cannot be persisted.
func NewAuthService(users UserRepository, policy data.RolePolicy, log logger.Logger) *AuthService {
	return &AuthService{users: users, policy: policy, now: time.Now, log: log}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Login upserts the user behind id and returns the stored record. Without a
// configured user store the sign-in still succeeds with an unsaved user.
func (s *AuthService) Login(ctx context.Context, id Identity) (*data.User, error) {
	if id.OpenID == "" {
		return nil, common.NewValidationError("openId", "is required")
	}

	now := s.now().UTC()
	method := LoginMethodOIDC
	err := s.users.UpsertUser(ctx, data.UserUpsert{
		OpenID:       id.OpenID,
		Name:         optional(id.Name),
		Email:        optional(id.Email),
		LoginMethod:  &method,
		LastSignedIn: &now,
	})
	switch {
	case errors.Is(err, common.ErrUnconfigured):
		s.log.Warn("Cannot persist user: database not configured")
		return s.transientUser(id, now), nil
	case err != nil:
		return nil, fmt.Errorf("failed to record sign-in: %w", err)
	}

	user, err := s.users.GetUserByOpenID(ctx, id.OpenID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user after sign-in: %w", err)
	}
	if user == nil {
		return s.transientUser(id, now), nil
	}
	return user, nil
}

func (s *AuthService) transientUser(id Identity, now time.Time) *data.User {
	role := data.RoleUser
	if s.policy != nil {
		if r := s.policy.ResolveRole(id.OpenID, nil); r != nil {
			role = *r
		}
	}
	method := LoginMethodOIDC
	return &data.User{
		OpenID:       id.OpenID,
		Name:         optional(id.Name),
		Email:        optional(id.Email),
		LoginMethod:  &method,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastSignedIn: now,
	}
}
