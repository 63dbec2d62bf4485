// File path: internal/sqlite/catalog_test.go
package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := Config{Path: filepath.Join(t.TempDir(), "catalog.db")}
	cfg.applyDefaults()
	store, err := OpenWithConfig(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenAppliesPragmas(t *testing.T) {
	store := newTestStore(t)

	var mode string
	if err := store.DB().Get(&mode, "PRAGMA journal_mode"); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected wal journal mode, got %q", mode)
	}
	var fk int
	if err := store.DB().Get(&fk, "PRAGMA foreign_keys"); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Fatalf("expected foreign keys on, got %d", fk)
	}
}

func TestInsertCopybookDeduplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cb := Copybook{
		Name:         "ACCOUNT",
		Fingerprint:  "abc123",
		Source:       "01 REC. 05 A PIC X(2).",
		RecordName:   "REC",
		RecordLength: 2,
		FieldCount:   1,
	}
	first, err := store.InsertCopybook(ctx, cb)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	second, err := store.InsertCopybook(ctx, cb)
	if err != nil {
		t.Fatalf("reinsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected dedupe to return existing row, got %d and %d", first.ID, second.ID)
	}
	copybooks, err := store.ListCopybooks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(copybooks) != 1 {
		t.Fatalf("expected one catalogued copybook, got %d", len(copybooks))
	}
}

func TestDecodeRunHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cb, err := store.InsertCopybook(ctx, Copybook{
		Name: "ORDERS", Fingerprint: "fp1", Source: "src",
		RecordName: "REC", RecordLength: 10, FieldCount: 2,
	})
	if err != nil {
		t.Fatalf("insert copybook: %v", err)
	}
	if _, err := store.InsertDecodeRun(ctx, DecodeRun{
		CopybookID: cb.ID, CodePage: "cp037", InputBytes: 100, RecordCount: 10, Status: "ok",
	}); err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if _, err := store.InsertDecodeRun(ctx, DecodeRun{
		CopybookID: cb.ID, CodePage: "cp037", InputBytes: 7, Status: "error",
		Error: sql.NullString{String: "boundary", Valid: true},
	}); err != nil {
		t.Fatalf("insert failed run: %v", err)
	}

	runs, err := store.RunsForCopybook(ctx, cb.ID)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected two runs, got %d", len(runs))
	}
	if runs[0].Status != "error" {
		t.Fatalf("expected newest run first, got %s", runs[0].Status)
	}

	activity, err := store.ListActivity(ctx)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(activity) != 1 || activity[0].Runs != 2 || activity[0].Succeeded != 1 {
		t.Fatalf("unexpected activity rollup: %+v", activity)
	}
}
