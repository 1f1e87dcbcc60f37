package session

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/xo/dburl"
)

// Session keys
const (
	keyUserID        = "uid"
	keyFlashes       = "flashes"
	keyConfirmPrefix = "confirm:"
)

// Flash styles, matching the alert classes of the templates
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// ErrUnsupportedStore is returned for store URLs other than sqlite3
var ErrUnsupportedStore = errors.New("unsupported session store")

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Style   string
	Message string
}

func init() {
	// Session values are gob encoded as interface{}
	gob.Register([]Flash{})
}

// Config holds session settings
type Config struct {
	CookieName  string
	Lifetime    time.Duration
	IdleTimeout time.Duration
	Secure      bool
	// StoreURL selects a persistent store, e.g. "sqlite3:sessions.db".
	// Empty keeps sessions in memory.
	StoreURL string
}

// Manager wraps the scs session manager with the bookshelf session values
type Manager struct {
	*scs.SessionManager
	store *sqlite3store.SQLite3Store
	db    *sql.DB
}

// New builds a session manager. Cookies are HttpOnly and SameSite=Lax.
func New(cfg Config) (*Manager, error) {
	sm := scs.New()
	if cfg.CookieName != "" {
		sm.Cookie.Name = cfg.CookieName
	}
	if cfg.Lifetime > 0 {
		sm.Lifetime = cfg.Lifetime
	}
	if cfg.IdleTimeout > 0 {
		sm.IdleTimeout = cfg.IdleTimeout
	}
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = cfg.Secure
	sm.Cookie.Path = "/"

	m := &Manager{SessionManager: sm}
	if cfg.StoreURL == "" {
		return m, nil
	}

	if err := m.openStore(cfg.StoreURL); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) openStore(storeURL string) error {
	u, err := dburl.Parse(storeURL)
	if err != nil {
		return fmt.Errorf("failed to parse session store url: %w", err)
	}
	if u.Driver != "sqlite3" {
		return fmt.Errorf("%w: %s", ErrUnsupportedStore, u.Driver)
	}

	db, err := sql.Open(u.Driver, u.DSN)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping session store: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	m.db = db
	m.store = sqlite3store.New(db)
	m.SessionManager.Store = m.store

	slog.Info("using sqlite3 session store", "dsn", u.DSN)
	return nil
}

// Close stops the store cleanup and closes the store database
func (m *Manager) Close() error {
	if m.store != nil {
		m.store.StopCleanup()
	}
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// ============================================================================
// Authentication
// ============================================================================

// Login renews the session token and stores the user id
func (m *Manager) Login(ctx context.Context, userID string) error {
	if err := m.RenewToken(ctx); err != nil {
		return fmt.Errorf("failed to renew session token: %w", err)
	}
	m.Put(ctx, keyUserID, userID)
	return nil
}

// Logout forgets the user but keeps pending flashes for the next page
func (m *Manager) Logout(ctx context.Context) error {
	flashes, _ := m.Get(ctx, keyFlashes).([]Flash)
	if err := m.Destroy(ctx); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	if len(flashes) > 0 {
		m.Put(ctx, keyFlashes, flashes)
	}
	return nil
}

// UserID returns the logged in user id, or ""
func (m *Manager) UserID(ctx context.Context) string {
	return m.GetString(ctx, keyUserID)
}

// ============================================================================
// Flashes
// ============================================================================

// Flash queues a message for the next rendered page
func (m *Manager) Flash(ctx context.Context, style, message string) {
	flashes, _ := m.Get(ctx, keyFlashes).([]Flash)
	flashes = append(flashes, Flash{Style: style, Message: message})
	m.Put(ctx, keyFlashes, flashes)
}

// PopFlashes returns and clears the queued messages
func (m *Manager) PopFlashes(ctx context.Context) []Flash {
	flashes, _ := m.Pop(ctx, keyFlashes).([]Flash)
	return flashes
}

// ============================================================================
// Confirmation Tokens
// ============================================================================

// IssueConfirmation stores a fresh token for a destructive action on target.
// The confirmation page embeds it and the POST must present it back.
func (m *Manager) IssueConfirmation(ctx context.Context, target string) string {
	token := uuid.NewString()
	m.Put(ctx, keyConfirmPrefix+target, token)
	return token
}

// Confirm consumes the token issued for target. Each token works once.
func (m *Manager) Confirm(ctx context.Context, target, token string) bool {
	want := m.PopString(ctx, keyConfirmPrefix+target)
	if want == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(token)) == 1
}
