// Package sqlite implements the repository interfaces on top of SQLite.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary needs
// no C toolchain and ":memory:" databases make tests fast and isolated.
//
// Each entity lives in its own table ("collection"). Parents are referenced by
// id only: there are no FOREIGN KEY clauses, so deleting a parent never
// cascades and children keep their dangling reference. Each table carries its
// own schema constraints, installed by InstallConstraints (see schema.go).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the Cat, Meow and Purr
// repositories.
type DB struct {
	conn *sql.DB
}

// New opens the database and verifies the connection. It does not touch the
// schema; call Migrate before serving traffic.
//
// dbPath examples:
//   - "data/whiskerbook.db"  → file-based database (persistent)
//   - ":memory:"             → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every new connection to ":memory:" gets its own empty database, so the
	// pool must never grow past one connection there.
	if IsMemory(dbPath) {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets the concurrent count and page reads of a list run while a
	// write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Migrate installs the schema constraints on every collection and then the
// lookup indexes. It is idempotent and must finish before the HTTP server
// accepts requests.
func (db *DB) Migrate(ctx context.Context) ([]ConstraintResult, error) {
	results, err := db.InstallConstraints(ctx)
	if err != nil {
		return nil, err
	}

	_, err = db.conn.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_cats_name ON cats(name);
		CREATE INDEX IF NOT EXISTS idx_cats_created_at ON cats(created_at);
		CREATE INDEX IF NOT EXISTS idx_meows_cat_id_created_at ON meows(cat_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_meows_created_at ON meows(created_at);
		CREATE INDEX IF NOT EXISTS idx_purrs_meow_id ON purrs(meow_id);
		CREATE INDEX IF NOT EXISTS idx_purrs_created_at ON purrs(created_at);
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: creating indexes: %w", err)
	}

	return results, nil
}

// Truncate removes every record from the three collections. Used by the seed
// command before loading fresh data.
func (db *DB) Truncate(ctx context.Context) error {
	for _, table := range []string{tablePurrs, tableMeows, tableCats} {
		if _, err := db.conn.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("sqlite: truncating %s: %w", table, err)
		}
	}
	return nil
}

// exists runs an existence-only lookup by primary key.
func (db *DB) exists(ctx context.Context, table, id string) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		"SELECT 1 FROM "+table+" WHERE id = ? LIMIT 1", id,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking %s %s: %w", table, id, err)
	}
	return true, nil
}

// count runs SELECT COUNT(*) with an optional WHERE clause.
func (db *DB) count(ctx context.Context, table, where string, args ...any) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" "+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting %s: %w", table, err)
	}
	return n, nil
}

// deleteByID deletes one row and reports NotFound-worthy misses as false.
func (db *DB) deleteByID(ctx context.Context, table, id string) (bool, error) {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting from %s %s: %w", table, id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n > 0, nil
}

// orderBy sorts by creation time, breaking ties on the (time-ordered) id so
// pages are stable.
func orderBy(alias string, oldest bool) string {
	dir := "DESC"
	if oldest {
		dir = "ASC"
	}
	if alias != "" {
		alias += "."
	}
	return fmt.Sprintf("ORDER BY %[1]screated_at %[2]s, %[1]sid %[2]s", alias, dir)
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// IsMemory reports whether dbPath names an in-memory database, which has no
// file or directory on disk.
func IsMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}

// dsn adds a busy timeout to file databases so concurrent writers wait for
// the lock instead of failing immediately with SQLITE_BUSY.
func dsn(dbPath string) string {
	if IsMemory(dbPath) {
		return dbPath
	}
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=busy_timeout(5000)"
}
