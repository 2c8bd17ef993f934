package session

import (
	"context"
	"database/sql"
	"mbs-hub/internal/config"
	"net/http"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

// Manager is an interface that abstracts the session management implementation.
// This allows for easier testing and dependency injection.
type Manager interface {
	LoadAndSave(next http.Handler) http.Handler
	Put(ctx context.Context, key string, val interface{})
	GetString(ctx context.Context, key string) string
	PopString(ctx context.Context, key string) string
	RenewToken(ctx context.Context) error
	Destroy(ctx context.Context) error
	Remove(ctx context.Context, key string)
}

var _ Manager = (*scs.SessionManager)(nil)

// Session keys.
const (
	KeyOpenID     = "user_open_id"
	KeyName       = "user_name"
	KeyEmail      = "user_email"
	KeyRole       = "user_role"
	KeyOAuthNonce = "oauth_nonce"
)

// NewStore picks the session store for the relational driver. A nil db or a
// driver without an scs store yields an in-memory store.
func NewStore(driver string, db *sql.DB) scs.Store {
	if db == nil {
		return memstore.New()
	}
	switch driver {
	case "mysql":
		return mysqlstore.New(db)
	case "sqlite3":
		return sqlite3store.New(db)
	}
	return memstore.New()
}

// New creates a session manager configured from cfg.
func New(cfg config.SessionConfig, secure bool, store scs.Store) *scs.SessionManager {
	sm := scs.New()
	sm.Store = store
	sm.Lifetime = time.Duration(cfg.Lifetime) * time.Hour
	if cfg.CookieName != "" {
		sm.Cookie.Name = cfg.CookieName
	}
	sm.Cookie.HttpOnly = true
	sm.Cookie.Persist = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = secure
	return sm
}
