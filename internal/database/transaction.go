package database

// Transaction Utilities
//
// Two patterns cover every atomic write in the data layer:
//
// # RunInTransaction (for read-then-write sequences)
//
// Use when later statements depend on earlier results:
//
//	err := RunInTransaction(ctx, db, func(tx Querier) error {
//	    if _, err := tx.Execute(ctx, "DELETE FROM t WHERE k = $1", k); err != nil {
//	        return err
//	    }
//	    _, err := tx.Query(ctx, "INSERT INTO t (k) VALUES ($1) RETURNING *", k)
//	    return err
//	})
//
// # AtomicBatch (for fixed statement lists)
//
// Simple, fluent API for statements that must succeed together and whose
// arguments are known up front:
//
//	batch := NewAtomicBatch()
//	batch.Add(query1, args1...)
//	batch.Add(query2, args2...)
//	batch.Execute(ctx, db)  // All or nothing
//
// Each statement keeps its own $1..$n numbering; nothing is merged.

import (
	"context"
	"fmt"
)

// RunInTransaction executes fn within a transaction. If fn returns an error
// or panics the transaction is rolled back, otherwise it is committed.
func RunInTransaction(ctx context.Context, db Database, fn func(tx Querier) error) (err error) {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// AtomicBatch provides a simpler API for batch operations that should be atomic
type AtomicBatch struct {
	queries []batchQuery
}

type batchQuery struct {
	query string
	args  []interface{}
}

// NewAtomicBatch creates a new atomic batch
func NewAtomicBatch() *AtomicBatch {
	return &AtomicBatch{
		queries: make([]batchQuery, 0),
	}
}

// Add adds a statement to the batch
func (ab *AtomicBatch) Add(query string, args ...interface{}) *AtomicBatch {
	ab.queries = append(ab.queries, batchQuery{query: query, args: args})
	return ab
}

// Execute runs all statements in a single transaction and returns the total
// number of affected rows
func (ab *AtomicBatch) Execute(ctx context.Context, db Database) (int64, error) {
	if len(ab.queries) == 0 {
		return 0, nil
	}

	var total int64
	err := RunInTransaction(ctx, db, func(tx Querier) error {
		for i, q := range ab.queries {
			n, err := tx.Execute(ctx, q.query, q.args...)
			if err != nil {
				return fmt.Errorf("statement %d failed: %w", i+1, err)
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Len returns the number of statements in the batch
func (ab *AtomicBatch) Len() int {
	return len(ab.queries)
}
