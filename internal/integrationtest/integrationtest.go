// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/go-petr/bank-backoffice/cmd/httpserver"
	"github.com/go-petr/bank-backoffice/db/migration"
	"github.com/go-petr/bank-backoffice/pkg/configpkg"
	"github.com/go-petr/bank-backoffice/pkg/dbpkg"

	_ "github.com/lib/pq" // postgres driver
)

// Driver is the database driver used by integration tests.
const Driver = "postgres"

// StartPostgres runs a disposable Postgres container with every migration applied.
//
// It is meant to be called once from TestMain. The returned func terminates the container.
func StartPostgres(ctx context.Context) (string, func(), error) {
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("bank_backoffice"),
		tcpostgres.WithUsername("root"),
		tcpostgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return "", nil, fmt.Errorf("start postgres container: %w", err)
	}

	terminate := func() { _ = container.Terminate(context.Background()) }

	source, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate()
		return "", nil, fmt.Errorf("get connection string: %w", err)
	}

	db, err := dbpkg.Setup(Driver, source)
	if err != nil {
		terminate()
		return "", nil, fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	if err := dbpkg.Migrate(db, migration.FS); err != nil {
		terminate()
		return "", nil, fmt.Errorf("migrate: %w", err)
	}

	return source, terminate, nil
}

// TestConfig returns configuration pointing at source.
func TestConfig(source string) configpkg.Config {
	return configpkg.Config{
		DBDriver:             Driver,
		DBSource:             source,
		TokenKind:            "paseto",
		TokenSymmetricKey:    "12345678901234567890123456789012",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 24 * time.Hour,
		TxTimeout:            5 * time.Second,
	}
}

// SetupServer returns test server that cleans up database after each integration test.
func SetupServer(t *testing.T, source string) *httpserver.Server {
	t.Helper()

	config := TestConfig(source)

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	gin.SetMode(gin.TestMode)

	server, err := httpserver.New(SetupDB(t, source), zerolog.Nop(), config)
	if err != nil {
		t.Fatalf(`httpserver.New(db, logger, config) returned error: %v`, err)
	}

	return server
}

// Flush flushes all db tables without droping.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	var tables string

	const query = `
	SELECT string_agg(table_name, ', ')
	FROM information_schema.tables
	WHERE table_schema='public' AND table_name <> 'schema_migrations';`

	row := db.QueryRow(query)

	err := row.Scan(&tables)
	if err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}

	if _, err := db.Exec(`TRUNCATE TABLE ` + tables + " RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB sets up connection with database for testing and then cleans it.
func SetupDB(t *testing.T, source string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(Driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}

// SetupTX sets up a database transaction to be used in tests.
//
// Once the tests are done it will rollback the transaction.
func SetupTX(t *testing.T, source string) *sql.Tx {
	t.Helper()

	db, err := dbpkg.Setup(Driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("db.Begin() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Fatalf("tx.Rollback() failed: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("db.Close() failed: %v", err)
		}
	})

	return tx
}
