package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mbs-hub/internal/common"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// RolePolicy decides the role to store for a user at upsert time.
type RolePolicy interface {
	ResolveRole(openID string, requested *Role) *Role
}

// SQLUserRepository handles database operations for users.
type SQLUserRepository struct {
	conn   DBProvider
	policy RolePolicy
	now    func() time.Time
}

// NewSQLUserRepository creates a new SQLUserRepository. policy may be nil.
func NewSQLUserRepository(conn DBProvider, policy RolePolicy) *SQLUserRepository {
	return &SQLUserRepository{conn: conn, policy: policy, now: time.Now}
}

// UpsertUser inserts the user or updates the provided fields of an existing one,
// keyed on OpenID. When nothing but the OpenID is provided, an existing row only
// has its last sign-in refreshed.
func (r *SQLUserRepository) UpsertUser(ctx context.Context, u UserUpsert) error {
	if strings.TrimSpace(u.OpenID) == "" {
		return common.NewValidationError("openId", "user openId is required for upsert")
	}
	if r.policy != nil {
		u.Role = r.policy.ResolveRole(u.OpenID, u.Role)
	}

	db, err := r.conn.DB(ctx)
	if err != nil {
		return common.NewStoreError("upsert user", err)
	}

	// A concurrent first login can win the insert race; the second attempt
	// then takes the update path.
	for attempt := 0; ; attempt++ {
		err = r.upsert(ctx, db, u)
		if err == nil || attempt > 0 || !isUniqueViolation(err) {
			break
		}
	}
	return common.NewStoreError("upsert user", err)
}

func (r *SQLUserRepository) upsert(ctx context.Context, db *sqlx.DB, u UserUpsert) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := r.now().UTC()
	var id int64
	err = tx.GetContext(ctx, &id, tx.Rebind(`SELECT id FROM users WHERE open_id = ?`), u.OpenID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = insertUser(ctx, tx, u, now)
	case err == nil:
		err = updateUser(ctx, tx, id, u, now)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

func insertUser(ctx context.Context, tx *sqlx.Tx, u UserUpsert, now time.Time) error {
	role := RoleUser
	if u.Role != nil {
		role = *u.Role
	}
	lastSignedIn := now
	if u.LastSignedIn != nil {
		lastSignedIn = u.LastSignedIn.UTC()
	}
	query := `INSERT INTO users (open_id, name, email, login_method, role, created_at, updated_at, last_signed_in)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, tx.Rebind(query),
		u.OpenID, nullable(u.Name), nullable(u.Email), nullable(u.LoginMethod), string(role), now, now, lastSignedIn)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func updateUser(ctx context.Context, tx *sqlx.Tx, id int64, u UserUpsert, now time.Time) error {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if u.Name != nil {
		set("name", nullable(u.Name))
	}
	if u.Email != nil {
		set("email", nullable(u.Email))
	}
	if u.LoginMethod != nil {
		set("login_method", nullable(u.LoginMethod))
	}
	if u.LastSignedIn != nil {
		set("last_signed_in", u.LastSignedIn.UTC())
	}
	if u.Role != nil {
		set("role", string(*u.Role))
	}
	if len(sets) == 0 {
		set("last_signed_in", now)
	}
	set("updated_at", now)

	args = append(args, id)
	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// nullable maps an explicitly provided empty string to NULL.
func nullable(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

// GetUserByOpenID returns the user or nil when none exists.
func (r *SQLUserRepository) GetUserByOpenID(ctx context.Context, openID string) (*User, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return nil, common.NewStoreError("get user", err)
	}
	var user User
	query := `SELECT id, open_id, name, email, login_method, role, created_at, updated_at, last_signed_in
	          FROM users WHERE open_id = ?`
	if err := db.GetContext(ctx, &user, db.Rebind(query), openID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found is not an error
		}
		return nil, common.NewStoreError("get user", err)
	}
	return &user, nil
}
