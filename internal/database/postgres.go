package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

const driverName = "pgx"

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Postgres implements the Database interface for PostgreSQL
type Postgres struct {
	executor
	db     *sql.DB
	config Config
}

// NewPostgres creates a new Postgres instance. A nil logger discards
// statement logging.
func NewPostgres(cfg Config, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Postgres{
		executor: executor{logger: logger},
		config:   cfg,
	}
}

// DSN returns the connection string for the configuration. An explicit URL
// wins over the individual parts.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   c.Host,
		Path:   "/" + c.Database,
	}
	if c.Port != "" {
		u.Host = c.Host + ":" + c.Port
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	q := url.Values{}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Connect opens the pool and verifies it with a ping
func (p *Postgres) Connect(ctx context.Context) error {
	db, err := sql.Open(driverName, p.config.DSN())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if p.config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(p.config.MaxOpenConns)
	}
	if p.config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(p.config.MaxIdleConns)
	}
	if p.config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(p.config.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: ping failed: %v", ErrConnection, err)
	}

	p.db = db
	p.executor.conn = db
	return nil
}

// Close closes the connection pool
func (p *Postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Ping checks the database connection
func (p *Postgres) Ping(ctx context.Context) error {
	if p.db == nil {
		return ErrConnection
	}
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// BeginTx starts a new transaction on a dedicated connection
func (p *Postgres) BeginTx(ctx context.Context) (Transaction, error) {
	if p.db == nil {
		return nil, ErrConnection
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(err)
	}
	return &pgTransaction{
		executor: executor{conn: tx, logger: p.logger},
		tx:       tx,
	}, nil
}

// pgTransaction implements Transaction on top of *sql.Tx
type pgTransaction struct {
	executor
	tx *sql.Tx
}

func (t *pgTransaction) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return classify(err)
	}
	return nil
}

func (t *pgTransaction) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return classify(err)
	}
	return nil
}

// sqlConn is the subset of *sql.DB and *sql.Tx the executor needs
type sqlConn interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// executor implements Querier for both the pool and a transaction
type executor struct {
	conn   sqlConn
	logger *slog.Logger
}

// Query executes a statement and scans every returned row into a Row.
// RowCount is the number of rows returned.
func (e executor) Query(ctx context.Context, query string, args ...interface{}) (*Result, error) {
	if e.conn == nil {
		return nil, ErrConnection
	}

	start := time.Now()
	rows, err := e.conn.QueryContext(ctx, query, args...)
	if err != nil {
		e.log(ctx, query, len(args), start, err)
		return nil, classify(err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		e.log(ctx, query, len(args), start, err)
		return nil, classify(err)
	}

	e.log(ctx, query, len(args), start, nil)
	return &Result{Rows: out, RowCount: int64(len(out))}, nil
}

// QueryOne executes a statement and returns its first row
func (e executor) QueryOne(ctx context.Context, query string, args ...interface{}) (Row, error) {
	res, err := e.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, ErrNotFound
	}
	return res.Rows[0], nil
}

// Execute runs a statement and returns the number of affected rows
func (e executor) Execute(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if e.conn == nil {
		return 0, ErrConnection
	}

	start := time.Now()
	res, err := e.conn.ExecContext(ctx, query, args...)
	e.log(ctx, query, len(args), start, err)
	if err != nil {
		return 0, classify(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return n, nil
}

func (e executor) log(ctx context.Context, query string, nargs int, start time.Time, err error) {
	attrs := []slog.Attr{
		slog.String("query", query),
		slog.Int("args", nargs),
		slog.Duration("took", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	e.logger.LogAttrs(ctx, slog.LevelDebug, "sql", attrs...)
}

// scanRows converts driver rows into column-keyed maps. Byte slices are
// turned into strings so JSON and text columns share one representation.
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0)
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// classify maps driver errors onto the package's sentinel errors
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s (%s)", ErrDuplicate, pgErr.Message, pgErr.ConstraintName)
		}
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrQuery, err)
}
