package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/query"
)

// Repository is the capability set every table repository provides. T is
// the domain object, C the create input and U the partial update input.
//
// FindByID returns (nil, nil) when no row matches. Create fails with
// ErrCreateFailed when the insert yields no row or the row cannot be read
// back. Update fails with ErrNotFound for an unknown id; an update with no
// fields set is a read. Delete reports whether a row was removed.
type Repository[T any, C any, U any] interface {
	FindByID(ctx context.Context, id int) (*T, error)
	Create(ctx context.Context, input *C) (*T, error)
	Update(ctx context.Context, id int, input *U) (*T, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// table is embedded by every repository. It names the table and supplies the
// default Delete plus the insert/update plumbing.
type table struct {
	db   database.Querier
	name string
}

// Delete removes the row with the given id
func (t table) Delete(ctx context.Context, id int) (bool, error) {
	n, err := t.db.Execute(ctx, "DELETE FROM "+t.name+" WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", t.name, err)
	}
	return n > 0, nil
}

// row fetches one row by id, or nil when absent
func (t table) row(ctx context.Context, id int) (database.Row, error) {
	row, err := t.db.QueryOne(ctx, "SELECT * FROM "+t.name+" WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s: %w", t.name, err)
	}
	return row, nil
}

// rows runs a query and returns its rows
func (t table) rows(ctx context.Context, q string, args ...interface{}) ([]database.Row, error) {
	res, err := t.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.name, err)
	}
	return res.Rows, nil
}

// insertSQL renders "INSERT INTO t (a, b) VALUES ($1, $2) RETURNING id"
func (t table) insertSQL(columns []string) string {
	ph := make([]string, len(columns))
	for i := range columns {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		t.name, strings.Join(columns, ", "), strings.Join(ph, ", "))
}

// paginate runs the count and data statements for a list read
func (t table) paginate(ctx context.Context, b *query.Builder, from, columns, orderBy string, page query.Page) ([]database.Row, int, error) {
	countSQL, countArgs, dataSQL, dataArgs := b.List(from, columns, orderBy, page)

	countRow, err := t.db.QueryOne(ctx, countSQL, countArgs...)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, 0, fmt.Errorf("failed to count %s: %w", t.name, err)
	}
	total := extractCount(countRow)

	res, err := t.db.Query(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", t.name, err)
	}
	return res.Rows, total, nil
}

// create runs an INSERT ... RETURNING id and reads the new row back through
// find. A missing id or a failed read-back is a consistency fault.
func create[T any](ctx context.Context, t table, q string, args []interface{}, find func(context.Context, int) (*T, error)) (*T, error) {
	row, err := t.db.QueryOne(ctx, q, args...)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: insert into %s returned no row", ErrCreateFailed, t.name)
		}
		return nil, fmt.Errorf("failed to create %s: %w", t.name, err)
	}

	id := getInt(row, "id")
	if id == 0 {
		return nil, fmt.Errorf("%w: insert into %s returned no id", ErrCreateFailed, t.name)
	}

	out, err := find(ctx, id)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %s %d not found after insert", ErrCreateFailed, t.name, id)
	}
	return out, nil
}

// update applies a patch and reads the row back through find. An empty
// patch only reads.
func update[T any](ctx context.Context, t table, id int, p *query.Patch, touch bool, find func(context.Context, int) (*T, error)) (*T, error) {
	if p.Empty() {
		out, err := find(ctx, id)
		if err != nil {
			return nil, err
		}
		if out == nil {
			return nil, notFound(t.name, id)
		}
		return out, nil
	}

	q, args := p.Update(t.name, "id", id, touch)
	res, err := t.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", t.name, err)
	}
	if len(res.Rows) == 0 {
		return nil, notFound(t.name, id)
	}

	out, err := find(ctx, id)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, notFound(t.name, id)
	}
	return out, nil
}

// mapRows applies parse to every row
func mapRows[T any](rows []database.Row, parse func(database.Row) *T) []*T {
	out := make([]*T, 0, len(rows))
	for _, r := range rows {
		out = append(out, parse(r))
	}
	return out
}
