// Package verify checks rewritten SQL against a live database without
// running it.
//
// The database drivers are registered by this package:
//
//	sqlite    modernc.org/sqlite (pure Go)
//	postgres  github.com/jackc/pgx/v5/stdlib
package verify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver (pure Go)
)

// ErrRejected is returned when the database does not accept a statement.
var ErrRejected = errors.New("statement rejected by database")

// driverNames maps the names accepted by Open to database/sql drivers.
var driverNames = map[string]string{
	"sqlite":   "sqlite",
	"sqlite3":  "sqlite",
	"postgres": "pgx",
	"pgx":      "pgx",
}

// Drivers returns the driver names accepted by Open.
func Drivers() []string {
	names := make([]string, 0, len(driverNames))
	for name := range driverNames {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Verifier runs EXPLAIN for statements on a database connection.
type Verifier struct {
	db     *sql.DB
	logger *slog.Logger
}

// New wraps an open database. A nil logger discards output.
func New(db *sql.DB, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Verifier{db: db, logger: logger}
}

// Open connects to the database named by driver and dsn and pings it.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Verifier, error) {
	name, ok := driverNames[strings.ToLower(driver)]
	if !ok {
		return nil, fmt.Errorf("unknown verify driver %q (available: %s)", driver, strings.Join(Drivers(), ", "))
	}
	if dsn == "" {
		return nil, fmt.Errorf("verify driver %s: dsn is required", driver)
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}
	if name == "sqlite" {
		// an in-memory database exists per connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}

	v := New(db, logger)
	v.logger.Debug("verify connection established", slog.String("driver", driver))
	return v, nil
}

// DB returns the underlying connection.
func (v *Verifier) DB() *sql.DB {
	return v.db
}

// Check asks the database to plan stmt. A statement the database cannot
// plan yields an error wrapping ErrRejected.
func (v *Verifier) Check(ctx context.Context, stmt string) error {
	if v.db == nil {
		return fmt.Errorf("database connection not established")
	}
	stmt = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
	if stmt == "" {
		return fmt.Errorf("%w: empty statement", ErrRejected)
	}

	rows, err := v.db.QueryContext(ctx, "EXPLAIN "+stmt)
	if err != nil {
		v.logger.Debug("explain failed", slog.String("sql", stmt), slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	defer rows.Close()
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	return nil
}

// Close closes the database connection.
func (v *Verifier) Close() error {
	if v.db != nil {
		return v.db.Close()
	}
	return nil
}
