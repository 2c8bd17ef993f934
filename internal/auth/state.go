package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const stateIssuer = "mbs-hub"

// StateClaims is the payload of the OAuth state parameter.
type StateClaims struct {
	ReturnTo string `json:"rt,omitempty"`
	jwt.RegisteredClaims
}

// StateSigner issues and checks signed, expiring OAuth state tokens. The
// token id doubles as a nonce the caller stores in the session.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewStateSigner creates a StateSigner. An empty secret is rejected.
func NewStateSigner(secret string, ttl time.Duration) (*StateSigner, error) {
	if secret == "" {
		return nil, errors.New("session secret is required to sign OAuth state")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateSigner{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed state token and its nonce.
func (s *StateSigner) Issue(returnTo string) (string, string, error) {
	now := s.now()
	nonce := uuid.NewString()
	claims := StateClaims{
		ReturnTo: returnTo,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        nonce,
			Issuer:    stateIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign state: %w", err)
	}
	return token, nonce, nil
}

// Verify checks the signature, issuer and expiry of state and that its nonce
// equals nonce.
func (s *StateSigner) Verify(state, nonce string) (*StateClaims, error) {
	var claims StateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid state: %w", err)
	}
	if nonce == "" || claims.ID != nonce {
		return nil, errors.New("invalid state: nonce mismatch")
	}
	return &claims, nil
}
