// Package database provides the query-execution layer used by every
// repository in Menagerie.
//
// Repositories never see a driver. They depend on the Querier interface,
// which runs positional SQL ($1, $2, ...) and hands back rows as
// column-keyed maps matching the physical table columns.
//
// # Interface Design
//
// The Querier interface provides three query methods:
//   - Query: Returns every row plus the affected row count
//   - QueryOne: Returns the first row, or ErrNotFound when there is none
//   - Execute: Returns only the affected row count (for UPDATE/DELETE)
//
// Database extends Querier with connection management and BeginTx.
//
// # Transaction Support
//
// Transactions are connection-level: BeginTx pins a pooled connection until
// Commit or Rollback. Most callers should use RunInTransaction or
// AtomicBatch instead of driving a Transaction by hand. See transaction.go.
//
// # Error Handling
//
// Standard errors are defined for common failure cases:
//   - ErrNotFound: QueryOne matched no row
//   - ErrDuplicate: Unique constraint violation
//   - ErrConnection: Database connection issues
//   - ErrQuery: Query execution failures
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, database.ErrDuplicate) {
//	    // Handle natural-key conflict
//	}
//
// # Usage Example
//
//	db := database.NewPostgres(cfg, logger)
//	if err := db.Connect(ctx); err != nil { ... }
//	defer db.Close()
//
//	row, err := db.QueryOne(ctx, "SELECT * FROM abilities WHERE id = $1", id)
package database
