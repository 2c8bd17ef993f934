//go:build integration

package auth

import (
	"context"
	"mbs-hub/internal/config"
	"mbs-hub/internal/data"
	"mbs-hub/internal/logger"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnforcerOnMigratedDatabase(t *testing.T) {
	cfg := config.DBConfig{
		Driver: data.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "hub.db"),
	}
	require.NoError(t, data.ApplyMigrations(cfg))

	db, err := data.NewDB(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e, err := NewEnforcer(db)
	require.NoError(t, err)
	SeedDefaultPolicies(e, true, logger.Nop())

	ok, err := e.Enforce(RoleAnonymous, "content.getPillars", ActQuery)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.Enforce(string(data.RoleAdmin), "preview.getPublishingStats", ActQuery)
	require.NoError(t, err)
	require.True(t, ok)

	// A second enforcer sees the persisted rules.
	reloaded, err := NewEnforcer(db)
	require.NoError(t, err)
	ok, err = reloaded.Enforce(string(data.RoleUser), "authors.getAuthors", ActQuery)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = reloaded.Enforce(RoleAnonymous, "preview.getPublishingStats", ActQuery)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEnforcerWithoutPolicyTable(t *testing.T) {
	cfg := config.DBConfig{
		Driver: data.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "empty.db"),
	}
	db, err := data.NewDB(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = NewEnforcer(db)
	require.Error(t, err)
}
