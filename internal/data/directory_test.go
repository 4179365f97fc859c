package data

import (
	"context"
	"path/filepath"
	"testing"
)

func TestDirectory_RecordAndName(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "directory.db")
	dir, err := NewDirectoryRepo(dbPath)
	if err != nil {
		t.Fatalf("NewDirectoryRepo: %v", err)
	}
	defer dir.Close()

	ctx := context.Background()
	if _, ok, err := dir.Name(ctx, 42); err != nil || ok {
		t.Fatalf("Expected miss for unknown channel, ok=%v err=%v", ok, err)
	}

	if err := dir.Record(ctx, 42, "deal-alerts", "guild-1"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	name, ok, err := dir.Name(ctx, 42)
	if err != nil || !ok || name != "deal-alerts" {
		t.Errorf("Expected deal-alerts, got %q ok=%v err=%v", name, ok, err)
	}

	// Re-recording refreshes the name.
	if err := dir.Record(ctx, 42, "renamed", "guild-1"); err != nil {
		t.Fatalf("Record refresh: %v", err)
	}
	name, _, _ = dir.Name(ctx, 42)
	if name != "renamed" {
		t.Errorf("Expected refreshed name, got %q", name)
	}
}
