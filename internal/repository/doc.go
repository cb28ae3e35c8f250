// Package repository implements the data access layer for Menagerie.
//
// Each repository struct handles one table (or one catalog table family)
// and talks to PostgreSQL through the database.Querier interface.
//
// # Repository Pattern
//
// All repositories follow a consistent pattern:
//
//   - Constructor function (NewXxxRepository) accepts a database.Querier;
//     repositories that open transactions take a database.Database
//   - FindByID, Create, Update and Delete satisfy Repository[T, C, U]
//   - List reads take a query object and return a query.Paginated page
//   - Results are normalized and mapped to model structs
//
// # Lookups
//
// A lookup that matches nothing returns (nil, nil). Operations that need a
// row to exist (Update, inventory mutations, state transitions) return an
// error wrapping ErrNotFound instead.
//
// # Query Patterns
//
//   - Positional parameters ($1, $2, ...) for every value
//   - Sort columns come from an allow-list, never from caller input
//   - JSON columns are encoded with encoding/json on write and decoded
//     tolerantly on read
//   - updated_at is refreshed by the UPDATE statement itself
//
// # Example Usage
//
//	repo := NewTrainerRepository(db)
//	trainer, err := repo.FindByID(ctx, 42)
//	if err != nil {
//	    return err
//	}
//	if trainer == nil {
//	    // Handle not found
//	}
package repository
