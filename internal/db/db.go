// Package db stores reference data, business confirmations and processing
// tasks. The same queries run on Postgres (pgx) and SQLite (modernc); only
// the placeholder format and the bootstrap schema differ.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrForeignKey is returned when a row references a missing parent.
	ErrForeignKey = errors.New("referenced row does not exist")
	ErrDuplicate  = errors.New("duplicate value")
)

// ValidationError reports a row rejected before it reached the database.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

//go:embed schema_postgres.sql
var schemaPostgres string

//go:embed schema_sqlite.sql
var schemaSQLite string

type Queries struct {
	db     *sql.DB
	pool   *pgxpool.Pool
	driver string
	sb     sq.StatementBuilderType
}

// New wraps an open database. driver selects the placeholder format.
func New(db *sql.DB, driver string) *Queries {
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if driver == DriverPostgres {
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &Queries{db: db, driver: driver, sb: sb}
}

// Open connects to dsn. Postgres goes through a pgx pool; SQLite opens
// the file with foreign keys enforced.
func Open(ctx context.Context, driver, dsn string) (*Queries, error) {
	switch driver {
	case DriverPostgres:
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		q := New(stdlib.OpenDBFromPool(pool), driver)
		q.pool = pool
		if err := q.Ping(ctx); err != nil {
			q.Close()
			return nil, err
		}
		return q, nil
	case DriverSQLite:
		db, err := sql.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// One writer avoids SQLITE_BUSY between the API and its tests.
		db.SetMaxOpenConns(1)
		q := New(db, driver)
		if err := q.Ping(ctx); err != nil {
			q.Close()
			return nil, err
		}
		return q, nil
	}
	return nil, fmt.Errorf("unsupported driver %q", driver)
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

func (q *Queries) Driver() string { return q.driver }

func (q *Queries) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", q.driver, err)
	}
	return nil
}

func (q *Queries) Close() {
	_ = q.db.Close()
	if q.pool != nil {
		q.pool.Close()
	}
}

// Bootstrap creates any missing tables. It never alters existing ones.
func (q *Queries) Bootstrap(ctx context.Context) error {
	schema := schemaSQLite
	if q.driver == DriverPostgres {
		schema = schemaPostgres
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := q.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}

// mapError turns driver errors into the package sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return fmt.Errorf("%w: %s", ErrForeignKey, pgErr.ConstraintName)
		case "23505":
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		}
		return err
	}
	// modernc reports constraint failures only in the message text.
	switch msg := err.Error(); {
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ErrForeignKey
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %s", ErrDuplicate, msg[strings.Index(msg, "UNIQUE constraint failed"):])
	}
	return err
}
