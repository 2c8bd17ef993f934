//go:build unit

package auth

import (
	"context"
	"errors"
	"mbs-hub/internal/common"
	"mbs-hub/internal/config"
	"mbs-hub/internal/data"
	"mbs-hub/internal/logger"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOwnerPolicy(t *testing.T) {
	policy := NewOwnerPolicy(config.OwnerConfig{OpenID: "owner-1"})
	user := data.RoleUser

	got := policy.ResolveRole("owner-1", &user)
	require.NotNil(t, got)
	require.Equal(t, data.RoleAdmin, *got)

	require.Equal(t, &user, policy.ResolveRole("someone", &user))
	require.Nil(t, policy.ResolveRole("someone", nil))

	// An unset owner never matches an empty open id.
	require.Nil(t, OwnerPolicy{}.ResolveRole("", nil))
}

func TestStateSigner(t *testing.T) {
	signer, err := NewStateSigner("s3cret", time.Minute)
	require.NoError(t, err)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return now }

	state, nonce, err := signer.Issue("/articles/a1")
	require.NoError(t, err)
	require.NotEmpty(t, nonce)

	claims, err := signer.Verify(state, nonce)
	require.NoError(t, err)
	require.Equal(t, "/articles/a1", claims.ReturnTo)

	_, err = signer.Verify(state, "other-nonce")
	require.Error(t, err, "nonce must be bound to the session")

	other, err := NewStateSigner("different", time.Minute)
	require.NoError(t, err)
	other.now = signer.now
	_, err = other.Verify(state, nonce)
	require.Error(t, err, "state signed with another secret must fail")

	now = now.Add(2 * time.Minute)
	_, err = signer.Verify(state, nonce)
	require.Error(t, err, "expired state must fail")
}

func TestNewStateSignerRequiresSecret(t *testing.T) {
	_, err := NewStateSigner("", time.Minute)
	require.Error(t, err)
}

func TestNewAuthenticatorUnconfigured(t *testing.T) {
	_, err := NewAuthenticator(context.Background(), config.OAuthConfig{})
	require.True(t, errors.Is(err, common.ErrUnconfigured))
}

func TestEnforcerPolicies(t *testing.T) {
	testCases := []struct {
		name         string
		requireAdmin bool
		sub          string
		obj          string
		act          string
		want         bool
	}{
		{"anonymous reads content", true, RoleAnonymous, "content.getPillars", ActQuery, true},
		{"anonymous cannot mutate content", true, RoleAnonymous, "content.getPillars", ActMutation, false},
		{"anonymous subscribes", true, RoleAnonymous, "newsletter.subscribe", ActMutation, true},
		{"anonymous logs out", true, RoleAnonymous, "auth.logout", ActMutation, true},
		{"anonymous health", true, RoleAnonymous, "system.health", ActQuery, true},
		{"anonymous blocked from preview", true, RoleAnonymous, "preview.getPublishingStats", ActQuery, false},
		{"user blocked from preview", true, "user", "preview.getArticlePreview", ActQuery, false},
		{"user inherits anonymous", true, "user", "authors.getAuthors", ActQuery, true},
		{"admin reads preview", true, "admin", "preview.getPublishingStats", ActQuery, true},
		{"admin inherits anonymous", true, "admin", "content.getArticles", ActQuery, true},
		{"open preview", false, RoleAnonymous, "preview.getAllArticlesPreview", ActQuery, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := NewEnforcer(nil)
			require.NoError(t, err)
			SeedDefaultPolicies(e, tc.requireAdmin, logger.Nop())

			ok, err := e.Enforce(tc.sub, tc.obj, tc.act)
			require.NoError(t, err)
			require.Equal(t, tc.want, ok)
		})
	}
}

func TestSeedDefaultPoliciesClosesPreview(t *testing.T) {
	e, err := NewEnforcer(nil)
	require.NoError(t, err)

	SeedDefaultPolicies(e, false, logger.Nop())
	SeedDefaultPolicies(e, true, logger.Nop())

	ok, err := e.Enforce(RoleAnonymous, "preview.getAllArticlesPreview", ActQuery)
	require.NoError(t, err)
	require.False(t, ok)
}
