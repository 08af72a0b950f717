package db

import (
	"context"
	"testing"
	"time"

	"github.com/datakettle/superstore-etl/internal/testutil"
)

func TestRunMetadataRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	baseConnStr := testutil.SkipIfNoPostgres(t)

	testConnStr := testutil.CreateTestDB(t, baseConnStr, "metadata")
	dbName := testutil.GetDBNameFromConnStr(testConnStr)
	cleanup := testutil.NewTestCleanup(t, baseConnStr, dbName)
	defer cleanup.Cleanup()

	pool := testutil.ConnectTestDB(t, testConnStr)
	cleanup.SetPool(pool)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	exists, err := MetadataExists(ctx, pool)
	if err != nil {
		t.Fatalf("MetadataExists failed: %v", err)
	}
	if exists {
		t.Fatal("Metadata table should not exist yet")
	}

	run := RunMetadata{SourceFile: "orders.csv", RawRows: 100, CleanedRows: 95}
	if err := SaveRunMetadata(ctx, pool, run); err != nil {
		t.Fatalf("SaveRunMetadata failed: %v", err)
	}

	exists, err = MetadataExists(ctx, pool)
	if err != nil {
		t.Fatalf("MetadataExists failed: %v", err)
	}
	if !exists {
		t.Fatal("Metadata table should exist after save")
	}

	if v, err := GetMetadataValue(ctx, pool, "source_file"); err != nil || v != "orders.csv" {
		t.Errorf("source_file = %q, err = %v", v, err)
	}
	if v, err := GetMetadataValue(ctx, pool, "cleaned_rows"); err != nil || v != "95" {
		t.Errorf("cleaned_rows = %q, err = %v", v, err)
	}

	all, err := GetAllMetadata(ctx, pool)
	if err != nil {
		t.Fatalf("GetAllMetadata failed: %v", err)
	}
	for _, key := range []string{"source_file", "raw_rows", "cleaned_rows", "version", "completed_at"} {
		if all[key] == "" {
			t.Errorf("Missing metadata key %s", key)
		}
	}

	// Saving again overwrites rather than duplicating.
	run.CleanedRows = 96
	if err := SaveRunMetadata(ctx, pool, run); err != nil {
		t.Fatalf("Second SaveRunMetadata failed: %v", err)
	}
	if v, _ := GetMetadataValue(ctx, pool, "cleaned_rows"); v != "96" {
		t.Errorf("cleaned_rows after overwrite = %q", v)
	}

	if err := DropMetadata(ctx, pool); err != nil {
		t.Fatalf("DropMetadata failed: %v", err)
	}
	exists, _ = MetadataExists(ctx, pool)
	if exists {
		t.Error("Metadata table should not exist after drop")
	}
}
