// Package testdb provides PostgreSQL test databases for integration tests.
//
// A single postgres container is started per test binary with
// testcontainers. Every New call creates its own database inside that
// container and applies the embedded migrations to it, so tests can run in
// parallel without seeing each other's rows.
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    repo := repository.NewTrainerRepository(tdb.DB)
//	    ...
//	}
//
// Set TEST_DATABASE_URL to run against an existing server instead of a
// container. Tests are skipped under -short and when Docker is unavailable.
//
// # Shared Database
//
// For subtests that share schema:
//
//	s := testdb.NewShared(t)
//	t.Run("create", func(t *testing.T) { tdb := s.SetupSubtest(t); ... })
package testdb
