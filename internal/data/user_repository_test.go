//go:build integration

package data

import (
	"context"
	"errors"
	"mbs-hub/internal/common"
	"testing"
	"time"
)

// ownerPolicy mirrors the production owner rule without importing the auth package.
type ownerPolicy string

func (p ownerPolicy) ResolveRole(openID string, requested *Role) *Role {
	if openID == string(p) {
		admin := RoleAdmin
		return &admin
	}
	return requested
}

func strPtr(s string) *string { return &s }

func rolePtr(r Role) *Role { return &r }

func setupUserTest(t *testing.T) (*SQLUserRepository, *time.Time) {
	t.Helper()
	db := newTestDB(t)
	repo := NewSQLUserRepository(StaticDB(db), ownerPolicy("owner-1"))
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	return repo, &now
}

func TestSQLUserRepository_UpsertInsertsNewUser(t *testing.T) {
	repo, now := setupUserTest(t)
	ctx := context.Background()

	err := repo.UpsertUser(ctx, UserUpsert{OpenID: "u-1", Name: strPtr("Ada"), Email: strPtr("ada@example.com"), LoginMethod: strPtr("oidc")})
	if err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	user, err := repo.GetUserByOpenID(ctx, "u-1")
	if err != nil || user == nil {
		t.Fatalf("expected user, got %v (err %v)", user, err)
	}
	if user.Role != RoleUser {
		t.Errorf("expected default role 'user', got %q", user.Role)
	}
	if user.Name == nil || *user.Name != "Ada" {
		t.Errorf("unexpected name %v", user.Name)
	}
	if !user.LastSignedIn.Equal(*now) {
		t.Errorf("expected last signed in %v, got %v", *now, user.LastSignedIn)
	}
}

func TestSQLUserRepository_UpsertUpdatesOnlyProvidedFields(t *testing.T) {
	repo, now := setupUserTest(t)
	ctx := context.Background()

	if err := repo.UpsertUser(ctx, UserUpsert{OpenID: "u-1", Name: strPtr("Ada"), Email: strPtr("ada@example.com")}); err != nil {
		t.Fatal(err)
	}
	first := *now

	*now = now.Add(time.Hour)
	if err := repo.UpsertUser(ctx, UserUpsert{OpenID: "u-1", Email: strPtr("ada@lovelace.dev")}); err != nil {
		t.Fatal(err)
	}

	user, err := repo.GetUserByOpenID(ctx, "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if user.Name == nil || *user.Name != "Ada" {
		t.Errorf("name should be untouched, got %v", user.Name)
	}
	if user.Email == nil || *user.Email != "ada@lovelace.dev" {
		t.Errorf("email should be updated, got %v", user.Email)
	}
	if !user.LastSignedIn.Equal(first) {
		t.Errorf("last signed in should not move when another field changed, got %v", user.LastSignedIn)
	}
}

func TestSQLUserRepository_UpsertWithOnlyOpenIDRefreshesLastSignedIn(t *testing.T) {
	repo, now := setupUserTest(t)
	ctx := context.Background()

	if err := repo.UpsertUser(ctx, UserUpsert{OpenID: "u-1"}); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(24 * time.Hour)
	if err := repo.UpsertUser(ctx, UserUpsert{OpenID: "u-1"}); err != nil {
		t.Fatal(err)
	}

	user, err := repo.GetUserByOpenID(ctx, "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if !user.LastSignedIn.Equal(*now) {
		t.Errorf("expected last signed in refreshed to %v, got %v", *now, user.LastSignedIn)
	}
}

func TestSQLUserRepository_OwnerIsAlwaysAdmin(t *testing.T) {
	repo, _ := setupUserTest(t)
	ctx := context.Background()

	if err := repo.UpsertUser(ctx, UserUpsert{OpenID: "owner-1", Role: rolePtr(RoleUser)}); err != nil {
		t.Fatal(err)
	}
	user, err := repo.GetUserByOpenID(ctx, "owner-1")
	if err != nil {
		t.Fatal(err)
	}
	if user.Role != RoleAdmin {
		t.Errorf("expected owner to be admin, got %q", user.Role)
	}

	// A later login that asks for the user role still cannot demote the owner.
	if err := repo.UpsertUser(ctx, UserUpsert{OpenID: "owner-1", Role: rolePtr(RoleUser)}); err != nil {
		t.Fatal(err)
	}
	user, _ = repo.GetUserByOpenID(ctx, "owner-1")
	if user.Role != RoleAdmin {
		t.Errorf("expected owner to stay admin, got %q", user.Role)
	}
}

func TestSQLUserRepository_MissingOpenID(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLUserRepository(StaticDB(db), nil)

	err := repo.UpsertUser(context.Background(), UserUpsert{Name: strPtr("Nobody")})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM users`); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected no rows written, got %d", count)
	}
}

func TestSQLUserRepository_GetUserNotFound(t *testing.T) {
	repo, _ := setupUserTest(t)

	user, err := repo.GetUserByOpenID(context.Background(), "ghost")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil, got %+v", user)
	}
}
