package auth

import (
	"context"
	"errors"
	"fmt"
	"mbs-hub/internal/common"
	"mbs-hub/internal/config"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Claims are the identity fields read from a verified ID token.
type Claims struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// Authenticator is a struct that holds the OIDC provider, OAuth2 config, and ID token verifier.
type Authenticator struct {
	*oidc.Provider
	*oauth2.Config
	*oidc.IDTokenVerifier
}

// NewAuthenticator discovers the OAuth server at cfg.ServerURL. Without a
// server URL it returns common.ErrUnconfigured.
func NewAuthenticator(ctx context.Context, cfg config.OAuthConfig) (*Authenticator, error) {
	if cfg.ServerURL == "" || cfg.ClientID == "" {
		return nil, common.ErrUnconfigured
	}

	// Use the OIDC discovery endpoint to get the provider configuration.
	provider, err := oidc.NewProvider(ctx, cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OAuth server: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &Authenticator{
		Provider:        provider,
		Config:          oauth2Config,
		IDTokenVerifier: verifier,
	}, nil
}

// LoginURL returns the authorization URL for state.
func (a *Authenticator) LoginURL(state string) string {
	return a.AuthCodeURL(state)
}

// Authenticate exchanges code for tokens and returns the verified ID token claims.
func (a *Authenticator) Authenticate(ctx context.Context, code string) (*Claims, error) {
	token, err := a.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("no id_token field in oauth2 token")
	}

	// The verifier checks issuer, audience, expiry and signature.
	idToken, err := a.IDTokenVerifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to read ID token claims: %w", err)
	}
	if claims.Subject == "" {
		claims.Subject = idToken.Subject
	}
	return &claims, nil
}
