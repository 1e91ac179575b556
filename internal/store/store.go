package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Empty file, nothing created yet
// 1 - products, customers, sales, users and their indexes
const currentSchemaVersion = 1

// State is the connection lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateOpening
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateOpening:
		return "opening"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Store provides durable storage for products, customers, sales and users.
// Uses SQLite with WAL mode and a single pooled connection.
//
// Thread-safety: all methods are safe for concurrent use. The only lock is
// around lazy initialization; SQLite serializes the rest.
type Store struct {
	path       string
	now        func() time.Time
	ids        IDGenerator
	bcryptCost int

	mu    sync.Mutex // guards initialization
	state atomic.Int32
	db    atomic.Pointer[sql.DB]
	err   error // memoized open failure
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the source of creation timestamps.
//
// Default: time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator sets the generator used for sale ids.
//
// Default: UUIDv7Generator
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		s.ids = g
	}
}

// WithPasswordCost sets the bcrypt cost for user passwords.
// Use bcrypt.MinCost in tests.
func WithPasswordCost(cost int) Option {
	return func(s *Store) {
		s.bcryptCost = cost
	}
}

// New creates an uninitialized store for the database at path. Nothing is
// opened until the first operation or an explicit Init.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:       path,
		now:        time.Now,
		ids:        UUIDv7Generator{},
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates or opens a SQLite database at the given path and initializes
// it immediately. Applies required pragmas and the schema.
//
// This function is idempotent - safe to call multiple times on the same file.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := New(path, opts...)
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Init moves the store to Ready, opening the database if needed.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.conn(ctx)
	return err
}

// State reports the current lifecycle state.
func (s *Store) State() State {
	return State(s.state.Load())
}

// Path returns the database path the store was created with.
func (s *Store) Path() string {
	return s.path
}

// conn returns the shared handle, running initialization on first use.
// Concurrent callers block on the same initialization and share its outcome.
func (s *Store) conn(ctx context.Context) (*sql.DB, error) {
	if db := s.db.Load(); db != nil {
		return db, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.State() {
	case StateReady:
		return s.db.Load(), nil
	case StateFailed:
		return nil, s.err
	}

	s.state.Store(int32(StateOpening))
	db, err := openDB(ctx, s.path)
	if err != nil {
		s.err = fmt.Errorf("open store %q: %w: %w", s.path, ErrConnectionUnavailable, err)
		s.state.Store(int32(StateFailed))
		slog.Error("store unavailable", "path", s.path, "error", err)
		return nil, s.err
	}

	s.db.Store(db)
	s.state.Store(int32(StateReady))
	slog.Info("store ready", "path", s.path, "schema_version", currentSchemaVersion)
	return db, nil
}

// Close closes the database connection. A later operation reopens it.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := s.db.Swap(nil)
	if db == nil {
		return nil
	}
	s.state.Store(int32(StateUninitialized))
	return db.Close()
}

// DB returns the underlying sql.DB, or nil before initialization.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db.Load()
}

// stamp returns the current time at the resolution the store persists.
func (s *Store) stamp() time.Time {
	return fromMillis(s.now().UnixMilli())
}

func openDB(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("no database path configured")
	}
	if !strings.HasPrefix(path, ":memory:") && !strings.HasPrefix(path, "file:") {
		dir := filepath.Dir(path)
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("database directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("database directory %q is not a directory", dir)
		}
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time. A single connection also
	// keeps every transaction from interleaving with another caller's.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Verify connection works
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates the collections and indexes when the on-disk version is
// absent or behind. This function is idempotent.
func applySchema(ctx context.Context, db *sql.DB) error {
	version, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}
	if version == currentSchemaVersion {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	// user_version lives in the file header and is transactional.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}

	slog.Info("schema applied", "from_version", version, "to_version", currentSchemaVersion)
	return nil
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.Load().QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
