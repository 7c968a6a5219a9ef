package appeal

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStoreSaveWritesOneFilePerAppeal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "appeals")
	store := NewFileStore(dir)
	ctx := context.Background()

	doc := map[string]string{"last_name": "Иванов"}

	first, err := store.Save(ctx, PrefixTask1, doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.Save(ctx, PrefixTask1, doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID == second.ID {
		t.Fatalf("expected unique ids, got %q twice", first.ID)
	}
	if !strings.HasPrefix(first.ID, PrefixTask1+"_") {
		t.Fatalf("expected id prefix %q, got %q", PrefixTask1, first.ID)
	}
	if first.File != filepath.Join(dir, first.ID+".json") {
		t.Fatalf("unexpected file path %q", first.File)
	}

	data, err := os.ReadFile(first.File)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decoding saved file: %v", err)
	}
	if got["last_name"] != "Иванов" {
		t.Fatalf("expected Cyrillic name to round-trip, got %q", got["last_name"])
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 files and no temp leftovers, got %d", len(entries))
	}
}

func TestFileStoreGet(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	rec, err := store.Save(ctx, PrefixTask2, map[string]string{"reason": ReasonOther})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), ReasonOther) {
		t.Fatalf("expected stored document, got %s", data)
	}

	_, err = store.Get(ctx, PrefixTask2+"_00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = store.Get(ctx, "../../etc/passwd")
	if !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestFileStoreList(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	ctx := context.Background()

	recs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty list, got %+v", recs)
	}

	saved, err := store.Save(ctx, PrefixTask3, map[string]any{"reasons": []string{ReasonNoEmail}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("writing stray file: %v", err)
	}

	recs, err = store.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0] != saved {
		t.Fatalf("expected only %+v, got %+v", saved, recs)
	}
}

func TestFileStoreListMissingDir(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "never-created"))

	recs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty list, got %+v", recs)
	}
}

func TestFileStoreSaveHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewFileStore(t.TempDir()).Save(ctx, PrefixTask1, map[string]string{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
