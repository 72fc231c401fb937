package warehouse

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/snowflakedb/gosnowflake"
)

// QueryError reports a statement the warehouse rejected (syntax, permissions,
// timeout). The warehouse's own message is preserved via the wrapped error.
type QueryError struct {
	Err error
}

// Error implements the error interface.
func (e *QueryError) Error() string { return "query error: " + e.Err.Error() }

// Unwrap returns the underlying warehouse error.
func (e *QueryError) Unwrap() error { return e.Err }

// ExecutionError reports any other failure while connecting or fetching.
type ExecutionError struct {
	Err error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string { return "execution error: " + e.Err.Error() }

// Unwrap returns the underlying error.
func (e *ExecutionError) Unwrap() error { return e.Err }

// Config holds Snowflake connection settings for the executor.
type Config struct {
	Account   string
	User      string
	Password  string
	Warehouse string
	Database  string
	Schema    string
	Role      string
}

// OpenFunc opens a database handle from a DSN. Overridable in tests.
type OpenFunc func(dsn string) (*sql.DB, error)

// defaultOpen opens a handle through the registered snowflake driver.
func defaultOpen(dsn string) (*sql.DB, error) {
	return sql.Open("snowflake", dsn) //nolint:wrapcheck // classified by the caller
}

// Executor runs SQL statements against Snowflake. Each Execute call opens
// its own connection and closes it on every exit path; connections are never
// pooled or shared across invocations.
type Executor struct {
	dsn  string
	open OpenFunc
	log  *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithOpenFunc overrides how database handles are opened.
func WithOpenFunc(open OpenFunc) ExecutorOption {
	return func(e *Executor) { e.open = open }
}

// WithExecutorLogger overrides the executor logger.
func WithExecutorLogger(log *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.log = log }
}

// NewExecutor creates an executor from Snowflake credentials.
func NewExecutor(cfg Config, opts ...ExecutorOption) (*Executor, error) {
	if cfg.Account == "" || cfg.User == "" || cfg.Password == "" || cfg.Warehouse == "" {
		return nil, fmt.Errorf("snowflake credentials are not fully configured")
	}

	dsn, err := gosnowflake.DSN(&gosnowflake.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Role:      cfg.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("building snowflake DSN: %w", err)
	}

	e := &Executor{
		dsn:  dsn,
		open: defaultOpen,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Execute runs one statement and returns the result set as CSV text: a
// header row from the result metadata followed by data rows, RFC 4180
// quoted. All rows are fetched eagerly; bounding the result size is the
// caller's job via LIMIT. The handle is closed regardless of how execution
// exits.
func (e *Executor) Execute(ctx context.Context, sqlText string) (string, error) {
	start := time.Now()

	db, err := e.open(e.dsn)
	if err != nil {
		return "", &ExecutionError{Err: err}
	}
	defer func() { _ = db.Close() }()

	// One statement per connection.
	db.SetMaxOpenConns(1)

	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return "", classifyError(err)
	}
	defer func() { _ = rows.Close() }()

	out, rowCount, err := serializeRows(rows)
	if err != nil {
		return "", err
	}

	e.log.Debug("query executed",
		"rows", rowCount,
		"duration", time.Since(start),
	)
	return out, nil
}

// classifyError maps a driver error to the two failure kinds: statements the
// warehouse rejected become QueryError, everything else ExecutionError.
func classifyError(err error) error {
	var sfErr *gosnowflake.SnowflakeError
	if errors.As(err, &sfErr) {
		return &QueryError{Err: err}
	}
	return &ExecutionError{Err: err}
}

// serializeRows drains the result set into CSV text.
func serializeRows(rows *sql.Rows) (string, int, error) {
	columns, err := rows.Columns()
	if err != nil {
		return "", 0, &ExecutionError{Err: err}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return "", 0, &ExecutionError{Err: err}
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	record := make([]string, len(columns))
	count := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return "", 0, &ExecutionError{Err: err}
		}
		for i, v := range values {
			record[i] = formatValue(v)
		}
		if err := w.Write(record); err != nil {
			return "", 0, &ExecutionError{Err: err}
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return "", 0, classifyError(err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", 0, &ExecutionError{Err: err}
	}
	return buf.String(), count, nil
}

// formatValue renders a scanned driver value as its CSV field text. Values
// are never parsed before re-encoding, so non-quoted inputs round-trip.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}
