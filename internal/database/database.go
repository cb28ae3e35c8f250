package database

import (
	"context"
	"errors"
	"time"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates QueryOne matched no row.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique constraint violation (e.g., duplicate item name).
	ErrDuplicate = errors.New("duplicate record")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure (syntax error, invalid reference, etc.).
	ErrQuery = errors.New("query error")
)

// Row is one result record keyed by physical column name.
type Row map[string]interface{}

// Result is what a statement produced: the returned rows (if any) and the
// number of rows the statement touched.
type Result struct {
	Rows     []Row
	RowCount int64
}

// First returns the first row or nil.
func (r *Result) First() Row {
	if r == nil || len(r.Rows) == 0 {
		return nil
	}
	return r.Rows[0]
}

// Querier executes positional SQL. Both Database and Transaction satisfy it,
// so repository code runs unchanged inside and outside a transaction.
type Querier interface {
	// Query executes a statement and returns its rows and affected count
	Query(ctx context.Context, query string, args ...interface{}) (*Result, error)

	// QueryOne executes a statement and returns the first row
	QueryOne(ctx context.Context, query string, args ...interface{}) (Row, error)

	// Execute runs a statement and returns the affected row count
	Execute(ctx context.Context, query string, args ...interface{}) (int64, error)
}

// Database defines the interface for database operations
type Database interface {
	Querier

	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Transaction support
	BeginTx(ctx context.Context) (Transaction, error)
}

// Transaction represents a database transaction
type Transaction interface {
	Querier
	Commit() error
	Rollback() error
}

// Config holds database configuration
type Config struct {
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
