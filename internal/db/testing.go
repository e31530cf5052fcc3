package db

import (
	"context"
	"os"
	"testing"

	"github.com/rahulmohankumar24/finch-demo/internal/db/driver"
)

// PostgresTestDSNEnv names the environment variable holding a PostgreSQL
// DSN for integration tests.
const PostgresTestDSNEnv = "FINCH_TEST_POSTGRES_DSN"

// NewTestMatterDB creates an in-memory matter store for testing.
// The database is closed when the test completes.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    mdb := db.NewTestMatterDB(t)
//	    // use mdb...
//	}
func NewTestMatterDB(t testing.TB) *MatterDB {
	t.Helper()

	mdb, err := OpenMatterDBInMemory(context.Background())
	if err != nil {
		t.Fatalf("create test matter db: %v", err)
	}

	t.Cleanup(func() {
		_ = mdb.Close()
	})

	return mdb
}

// NewTestPostgresMatterDB opens the matter store on the PostgreSQL server
// named by FINCH_TEST_POSTGRES_DSN, skipping the test when it is unset.
// All matter and client rows are cleared before the test runs.
func NewTestPostgresMatterDB(t testing.TB) *MatterDB {
	t.Helper()

	dsn := os.Getenv(PostgresTestDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresTestDSNEnv)
	}

	ctx := context.Background()
	mdb, err := OpenMatterDB(ctx, dsn, driver.DialectPostgres)
	if err != nil {
		t.Fatalf("open postgres matter db: %v", err)
	}
	if err := mdb.ReplaceAll(ctx, nil); err != nil {
		t.Fatalf("reset postgres matter db: %v", err)
	}
	if _, err := mdb.ExecContext(ctx, "DELETE FROM clients"); err != nil {
		t.Fatalf("reset clients: %v", err)
	}

	t.Cleanup(func() {
		_ = mdb.Close()
	})

	return mdb
}
