package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/database/migrations"
)

const (
	image    = "postgres:16-alpine"
	user     = "menagerie"
	password = "menagerie"
)

// TestDB is one migrated database owned by a single test
type TestDB struct {
	DB   *database.Postgres
	Name string
	t    *testing.T
}

var (
	serverOnce sync.Once
	serverURL  string
	serverErr  error
)

// server returns the admin URL of the shared postgres server, starting the
// container on first use
func server(ctx context.Context) (string, error) {
	serverOnce.Do(func() {
		if u := os.Getenv("TEST_DATABASE_URL"); u != "" {
			serverURL = u
			return
		}

		c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        image,
				ExposedPorts: []string{"5432/tcp"},
				Env: map[string]string{
					"POSTGRES_USER":     user,
					"POSTGRES_PASSWORD": password,
					"POSTGRES_DB":       "postgres",
				},
				WaitingFor: wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(90 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			serverErr = fmt.Errorf("start postgres container: %w", err)
			return
		}

		host, err := c.Host(ctx)
		if err != nil {
			serverErr = err
			return
		}
		port, err := c.MappedPort(ctx, "5432/tcp")
		if err != nil {
			serverErr = err
			return
		}
		serverURL = fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable", user, password, host, port.Port())
	})
	return serverURL, serverErr
}

// withDatabase swaps the database name in a connection URL
func withDatabase(raw, name string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	u.Path = "/" + name
	return u.String(), nil
}

func admin(ctx context.Context, serverURL, stmt string) error {
	db, err := sql.Open("pgx", serverURL)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, stmt)
	return err
}

// New creates a fresh, migrated database and drops it when the test ends.
func New(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("testdb: skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if os.Getenv("TEST_DATABASE_URL") == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
	}
	base, err := server(ctx)
	if err != nil {
		t.Skipf("testdb: postgres unavailable: %v", err)
	}

	name := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := admin(ctx, base, "CREATE DATABASE "+name); err != nil {
		t.Fatalf("testdb: create database: %v", err)
	}
	dsn, err := withDatabase(base, name)
	if err != nil {
		t.Fatalf("testdb: %v", err)
	}

	db := database.NewPostgres(database.Config{URL: dsn, MaxOpenConns: 4, MaxIdleConns: 2}, nil)
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: connect: %v", err)
	}
	if _, err := database.Migrate(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		t.Fatalf("testdb: migrate: %v", err)
	}

	tdb := &TestDB{DB: db, Name: name, t: t}
	t.Cleanup(func() {
		_ = db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = admin(ctx, base, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)")
	})
	return tdb
}

// Reset empties every application table while keeping the schema and the
// migration history.
func (tdb *TestDB) Reset(t *testing.T) {
	t.Helper()

	res, err := tdb.DB.Query(tdb.Ctx(), `SELECT tablename FROM pg_tables
		WHERE schemaname = 'public' AND tablename <> 'schema_migrations'
		ORDER BY tablename`)
	if err != nil {
		t.Fatalf("testdb: list tables: %v", err)
	}
	if res.RowCount == 0 {
		return
	}

	tables := make([]string, 0, res.RowCount)
	for _, row := range res.Rows {
		if name, ok := row["tablename"].(string); ok {
			tables = append(tables, name)
		}
	}
	stmt := "TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE"
	if _, err := tdb.DB.Execute(tdb.Ctx(), stmt); err != nil {
		t.Fatalf("testdb: reset: %v", err)
	}
}

// Ctx returns a context bounded to the life of the test.
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// MustExec executes a statement and fails the test on error.
func (tdb *TestDB) MustExec(query string, args ...interface{}) int64 {
	tdb.t.Helper()
	n, err := tdb.DB.Execute(tdb.Ctx(), query, args...)
	if err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nQuery: %s", err, query)
	}
	return n
}

// MustQuery runs a query and returns its rows, failing the test on error.
func (tdb *TestDB) MustQuery(query string, args ...interface{}) []database.Row {
	tdb.t.Helper()
	res, err := tdb.DB.Query(tdb.Ctx(), query, args...)
	if err != nil {
		tdb.t.Fatalf("testdb: query failed: %v\nQuery: %s", err, query)
	}
	return res.Rows
}

// Shared is a TestDB reused across subtests.
type Shared struct {
	*TestDB
}

// NewShared creates a database for use across several subtests.
func NewShared(t *testing.T) *Shared {
	return &Shared{TestDB: New(t)}
}

// SetupSubtest empties the database and binds it to the subtest.
// Call this at the start of each t.Run() block.
func (s *Shared) SetupSubtest(t *testing.T) *TestDB {
	t.Helper()
	s.TestDB.t = t
	s.TestDB.Reset(t)
	return s.TestDB
}
