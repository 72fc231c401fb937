package warehouse

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Account:   "acme-xy12345",
		User:      "reader",
		Password:  "secret",
		Warehouse: "COMPUTE_WH",
		Database:  "SAPI_10025",
	}
}

// newMockExecutor returns an executor whose open func hands out the given
// mocked handle exactly once.
func newMockExecutor(t *testing.T, db *sql.DB) *Executor {
	t.Helper()
	e, err := NewExecutor(testConfig(), WithOpenFunc(func(string) (*sql.DB, error) {
		return db, nil
	}))
	require.NoError(t, err)
	return e
}

func TestNewExecutor_IncompleteCredentials(t *testing.T) {
	_, err := NewExecutor(Config{Account: "acme", User: "reader"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not fully configured")
}

func TestExecute_CSVOutput(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM t`).WillReturnRows(
		sqlmock.NewRows([]string{"ID", "Amount"}).
			AddRow("o-1", 100).
			AddRow("o-2", 250),
	)
	mock.ExpectClose()

	e := newMockExecutor(t, db)
	out, err := e.Execute(context.Background(), "SELECT * FROM t")
	require.NoError(t, err)

	assert.Equal(t, "ID,Amount\no-1,100\no-2,250\n", out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_CSVRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	// Values containing the delimiter, quotes, newlines and empty strings.
	tricky := [][]string{
		{`plain`, `has,comma`},
		{`has "quotes"`, ``},
		{"line\nbreak", `,",`},
	}
	rows := sqlmock.NewRows([]string{"a", "b"})
	for _, r := range tricky {
		rows.AddRow(r[0], r[1])
	}
	mock.ExpectQuery("SELECT").WillReturnRows(rows)
	mock.ExpectClose()

	e := newMockExecutor(t, db)
	out, err := e.Execute(context.Background(), "SELECT a, b FROM t")
	require.NoError(t, err)

	parsed, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, len(tricky)+1)
	assert.Equal(t, []string{"a", "b"}, parsed[0])
	for i, want := range tricky {
		assert.Equal(t, want, parsed[i+1])
	}
}

func TestExecute_NullsAndBytes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"a", "b", "c"}).
			AddRow(nil, []byte("raw"), 3.14),
	)
	mock.ExpectClose()

	e := newMockExecutor(t, db)
	out, err := e.Execute(context.Background(), "SELECT a, b, c FROM t")
	require.NoError(t, err)
	assert.Equal(t, "a,b,c\n,raw,3.14\n", out)
}

func TestExecute_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sfErr := &gosnowflake.SnowflakeError{
		Number:  1003,
		Message: "SQL compilation error: syntax error line 1 at position 7",
	}
	mock.ExpectQuery("SELEC").WillReturnError(sfErr)
	mock.ExpectClose()

	e := newMockExecutor(t, db)
	_, err = e.Execute(context.Background(), "SELEC * FROM t")
	require.Error(t, err)

	var queryErr *QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Contains(t, err.Error(), "SQL compilation error")

	// The handle is closed even though the statement failed.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_ExecutionError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("network unreachable"))
	mock.ExpectClose()

	e := newMockExecutor(t, db)
	_, err = e.Execute(context.Background(), "SELECT 1")
	require.Error(t, err)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)

	var queryErr *QueryError
	assert.False(t, errors.As(err, &queryErr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_OpenFailure(t *testing.T) {
	e, err := NewExecutor(testConfig(), WithOpenFunc(func(string) (*sql.DB, error) {
		return nil, errors.New("driver unavailable")
	}))
	require.NoError(t, err)

	_, err = e.Execute(context.Background(), "SELECT 1")
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
}

func TestExecute_ConcurrentInvocationsGetOwnConnections(t *testing.T) {
	const workers = 4

	var mu sync.Mutex
	opened := 0
	mocks := make([]sqlmock.Sqlmock, 0, workers)

	e, err := NewExecutor(testConfig(), WithOpenFunc(func(string) (*sql.DB, error) {
		mu.Lock()
		defer mu.Unlock()
		db, mock, err := sqlmock.New()
		if err != nil {
			return nil, err
		}
		n := opened
		opened++
		mock.ExpectQuery("SELECT").WillReturnRows(
			sqlmock.NewRows([]string{"n"}).AddRow(fmt.Sprintf("row-%d", n)),
		)
		mock.ExpectClose()
		mocks = append(mocks, mock)
		return db, nil
	}))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := e.Execute(context.Background(), "SELECT n FROM t")
			assert.NoError(t, err)
			results[i] = out
		}(i)
	}
	wg.Wait()

	assert.Equal(t, workers, opened)

	// Each invocation observed exactly one row, and no row twice.
	seen := make(map[string]bool)
	for _, out := range results {
		records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.False(t, seen[records[1][0]], "row served to two invocations")
		seen[records[1][0]] = true
	}
	for _, mock := range mocks {
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}
