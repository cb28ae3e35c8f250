// Package fakedb provides a scripted, in-memory database.Database for unit
// tests.
//
// Statements are routed to handlers by SQL fragment. Whitespace in both the
// fragment and the statement is collapsed first, so multi-line queries can be
// matched with short one-line fragments. Every call is recorded.
//
// Usage:
//
//	db := fakedb.New()
//	db.On("FROM abilities WHERE id", fakedb.Rows(database.Row{"id": int64(1), "name": "Blaze"}))
//	repo := repository.NewAbilityRepository(db)
//	ability, err := repo.FindByID(ctx, 1)
//	db.LastCall().Args // []interface{}{1}
package fakedb

import (
	"context"
	"strings"
	"sync"

	"github.com/forgo/menagerie/internal/database"
)

// Handler produces the result of a routed statement
type Handler func(args []interface{}) (*database.Result, error)

// Call is one recorded statement
type Call struct {
	Query string
	Args  []interface{}
}

type route struct {
	fragment string
	handler  Handler
	once     bool
	used     bool
}

// DB implements database.Database against scripted handlers
type DB struct {
	mu     sync.Mutex
	routes []*route
	calls  []Call

	// BeginErr, when set, is returned by BeginTx.
	BeginErr error

	Begins    int
	Commits   int
	Rollbacks int
}

var _ database.Database = (*DB)(nil)

// New creates an empty fake. Unrouted statements return no rows.
func New() *DB {
	return &DB{}
}

// On routes every statement containing fragment to h. Routes are matched in
// registration order after any pending Once routes.
func (d *DB) On(fragment string, h Handler) *DB {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes = append(d.routes, &route{fragment: normalize(fragment), handler: h})
	return d
}

// Once routes the next statement containing fragment to h, then retires.
func (d *DB) Once(fragment string, h Handler) *DB {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes = append(d.routes, &route{fragment: normalize(fragment), handler: h, once: true})
	return d
}

// Rows returns a handler yielding the given rows
func Rows(rows ...database.Row) Handler {
	return func([]interface{}) (*database.Result, error) {
		out := make([]database.Row, len(rows))
		for i, r := range rows {
			cp := make(database.Row, len(r))
			for k, v := range r {
				cp[k] = v
			}
			out[i] = cp
		}
		return &database.Result{Rows: out, RowCount: int64(len(out))}, nil
	}
}

// Affected returns a handler reporting n affected rows and no data
func Affected(n int64) Handler {
	return func([]interface{}) (*database.Result, error) {
		return &database.Result{Rows: []database.Row{}, RowCount: n}, nil
	}
}

// Fail returns a handler that always fails with err
func Fail(err error) Handler {
	return func([]interface{}) (*database.Result, error) {
		return nil, err
	}
}

// Calls returns a copy of every recorded statement
func (d *DB) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// CallsMatching returns the recorded statements containing fragment
func (d *DB) CallsMatching(fragment string) []Call {
	frag := normalize(fragment)
	out := make([]Call, 0)
	for _, c := range d.Calls() {
		if strings.Contains(c.Query, frag) {
			out = append(out, c)
		}
	}
	return out
}

// LastCall returns the most recent statement, or a zero Call
func (d *DB) LastCall() Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.calls) == 0 {
		return Call{}
	}
	return d.calls[len(d.calls)-1]
}

func (d *DB) dispatch(query string, args []interface{}) (*database.Result, error) {
	q := normalize(query)

	d.mu.Lock()
	d.calls = append(d.calls, Call{Query: q, Args: args})
	var h Handler
	for _, r := range d.routes {
		if r.once && !r.used && strings.Contains(q, r.fragment) {
			r.used = true
			h = r.handler
			break
		}
	}
	if h == nil {
		for _, r := range d.routes {
			if !r.once && strings.Contains(q, r.fragment) {
				h = r.handler
				break
			}
		}
	}
	d.mu.Unlock()

	if h == nil {
		return &database.Result{Rows: []database.Row{}}, nil
	}
	res, err := h(args)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &database.Result{Rows: []database.Row{}}
	}
	return res, nil
}

// Query implements database.Querier
func (d *DB) Query(_ context.Context, query string, args ...interface{}) (*database.Result, error) {
	return d.dispatch(query, args)
}

// QueryOne implements database.Querier
func (d *DB) QueryOne(ctx context.Context, query string, args ...interface{}) (database.Row, error) {
	res, err := d.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, database.ErrNotFound
	}
	return res.Rows[0], nil
}

// Execute implements database.Querier
func (d *DB) Execute(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := d.Query(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowCount, nil
}

func (d *DB) Connect(context.Context) error { return nil }
func (d *DB) Close() error                  { return nil }
func (d *DB) Ping(context.Context) error    { return nil }

// BeginTx returns a transaction that routes through the same handlers
func (d *DB) BeginTx(context.Context) (database.Transaction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.BeginErr != nil {
		return nil, d.BeginErr
	}
	d.Begins++
	return &tx{DB: d}, nil
}

type tx struct {
	*DB
}

func (t *tx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Commits++
	return nil
}

func (t *tx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Rollbacks++
	return nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
