package repo

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "widget.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestOpenSQLite_ErrorOnMissingParentDir(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "does-not-exist", "widget.db")
	if db, err := OpenSQLite(bad); err == nil || db != nil {
		t.Fatalf("expected error opening %q, got db=%v err=%v", bad, db, err)
	}
}

func TestGetEntry_MissingRowIsNotAnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	val, ok, err := GetEntry(ctx, db, "local", "nope")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if ok || val != "" {
		t.Fatalf("GetEntry missing = (%q, %v), want (\"\", false)", val, ok)
	}
}

func TestPutEntry_RoundTripAndOverwrite(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := PutEntry(ctx, db, "local", "k", `{"a":1}`); err != nil {
		t.Fatalf("PutEntry: %v", err)
	}
	val, ok, err := GetEntry(ctx, db, "local", "k")
	if err != nil || !ok {
		t.Fatalf("GetEntry = (%q, %v, %v)", val, ok, err)
	}
	if val != `{"a":1}` {
		t.Fatalf("value = %q", val)
	}

	// Second Put on the same (scope, key) overwrites rather than duplicating.
	if err := PutEntry(ctx, db, "local", "k", `{"a":2}`); err != nil {
		t.Fatalf("PutEntry overwrite: %v", err)
	}
	val, _, _ = GetEntry(ctx, db, "local", "k")
	if val != `{"a":2}` {
		t.Fatalf("value after overwrite = %q", val)
	}
}

func TestEntries_ScopedIndependently(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := PutEntry(ctx, db, "local", "k", "durable"); err != nil {
		t.Fatalf("PutEntry local: %v", err)
	}
	if err := PutEntry(ctx, db, "session", "k", "ephemeral"); err != nil {
		t.Fatalf("PutEntry session: %v", err)
	}

	lv, _, _ := GetEntry(ctx, db, "local", "k")
	sv, _, _ := GetEntry(ctx, db, "session", "k")
	if lv != "durable" || sv != "ephemeral" {
		t.Fatalf("scoped values = (%q, %q)", lv, sv)
	}
}

func TestDeleteEntry(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := PutEntry(ctx, db, "local", "k", "v"); err != nil {
		t.Fatalf("PutEntry: %v", err)
	}
	if err := DeleteEntry(ctx, db, "local", "k"); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if _, ok, _ := GetEntry(ctx, db, "local", "k"); ok {
		t.Fatal("entry still present after delete")
	}
	// Deleting again is a no-op.
	if err := DeleteEntry(ctx, db, "local", "k"); err != nil {
		t.Fatalf("DeleteEntry (missing): %v", err)
	}
}
