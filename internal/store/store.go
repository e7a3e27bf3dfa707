package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"slices"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration upgrades an analytics log created by an older build. schema.sql
// always describes the newest layout; migrations only patch logs whose
// user_version is below their version.
type migration struct {
	version int
	name    string
	apply   func(db *sql.DB) error
}

// Schema version tracking:
// 0 - events table only (pre-migration)
// 1 - index on (action_id, decision) for CountDecisions and --decision filters
// 2 - url_source column recording which URL ladder tier produced a navigation
var migrations = []migration{
	{version: 1, name: "action decision index", apply: migrateActionDecisionIndex},
	{version: 2, name: "url source column", apply: migrateURLSource},
}

var currentSchemaVersion = migrations[len(migrations)-1].version

// Store is the durable analytics event log: one row per terminal
// resolution decision. Uses SQLite with WAL mode so `events` queries can
// read while a resolve writes.
type Store struct {
	db *sql.DB
}

// Open creates or opens the analytics log at path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (an fsync per checkpoint, not per event)
//   - 5-second busy timeout for lock contention between CLI runs
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	// Creates the file if it doesn't exist
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1) // Single writer to avoid SQLITE_BUSY errors
	db.SetMaxIdleConns(1) // Keep one connection ready

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Query runs an ad hoc read against analytics_events.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// SchemaVersion returns the log's user_version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	return userVersion(ctx, s.db)
}

// applyPragmas sets the SQLite configuration the event log relies on.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema upgrades an existing log first, then creates anything still
// missing. Upgrading first matters: schema.sql indexes columns an old log
// does not have yet.
func applySchema(db *sql.DB) error {
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// runMigrations applies, in version order, every migration newer than the
// log's user_version. A brand-new file has no events table and needs none.
func runMigrations(db *sql.DB) error {
	version, err := userVersion(context.Background(), db)
	if err != nil {
		return err
	}
	exists, err := hasTable(db, "analytics_events")
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := m.apply(db); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

func migrateActionDecisionIndex(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_events_action_decision
		ON analytics_events(action_id, decision)
	`)
	return err
}

// migrateURLSource adds url_source to logs written before navigations
// recorded their ladder tier. Old rows read back as "".
func migrateURLSource(db *sql.DB) error {
	cols, err := columns(db, "analytics_events")
	if err != nil {
		return err
	}
	if slices.Contains(cols, "url_source") {
		return nil
	}
	_, err = db.Exec(`ALTER TABLE analytics_events ADD COLUMN url_source TEXT NOT NULL DEFAULT ''`)
	return err
}

func userVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

func hasTable(db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("look up table %s: %w", name, err)
	}
	return n > 0, nil
}

// columns lists the column names of table in declaration order.
func columns(db *sql.DB, table string) ([]string, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
