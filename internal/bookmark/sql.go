package bookmark

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLStore keeps bookmarks in a single table of a SQL database.
type SQLStore struct {
	db     *sql.DB
	driver string
	get    string
	set    string
}

// OpenSQL opens the database, verifies the connection and creates the
// bookmark table if needed.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	s := &SQLStore{driver: driver}
	switch driver {
	case DriverSQLite:
		s.get = "SELECT slide FROM bookmarks WHERE bookmark_key = ?"
		s.set = "INSERT INTO bookmarks (bookmark_key, slide, updated_at) VALUES (?, ?, ?) " +
			"ON CONFLICT (bookmark_key) DO UPDATE SET slide = excluded.slide, updated_at = excluded.updated_at"
	case DriverPostgres:
		s.get = "SELECT slide FROM bookmarks WHERE bookmark_key = $1"
		s.set = "INSERT INTO bookmarks (bookmark_key, slide, updated_at) VALUES ($1, $2, $3) " +
			"ON CONFLICT (bookmark_key) DO UPDATE SET slide = EXCLUDED.slide, updated_at = EXCLUDED.updated_at"
	default:
		return nil, fmt.Errorf("bookmark store: unsupported driver %q", driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("bookmark store: %s requires a dsn", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("bookmark store: failed to open database: %w", err)
	}
	if driver == DriverPostgres {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	} else {
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("bookmark store: failed to connect: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS bookmarks (
		bookmark_key TEXT PRIMARY KEY,
		slide TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bookmark store: failed to create table: %w", err)
	}
	s.db = db
	return s, nil
}

// Driver names the database driver in use.
func (s *SQLStore) Driver() string { return s.driver }

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, s.get, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("bookmark store: get %q: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.set, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("bookmark store: set %q: %w", key, err)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
