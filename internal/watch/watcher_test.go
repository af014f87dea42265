package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"sparlo/internal/catalog"
	"sparlo/internal/pipeline"
	"sparlo/internal/store"
)

func newFixture(t *testing.T, debounce time.Duration) (*Watcher, *store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	archive, err := store.NewStore(filepath.Join(dir, "reports.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { archive.Close() })

	inbox := filepath.Join(dir, "inbox")
	w, err := NewWatcher(inbox, pipeline.New(catalog.Default()), archive, debounce)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	return w, archive, inbox
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, _, _ := newFixture(t, 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Second Start is a no-op, second Stop too.
	if err := w.Start(ctx); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	w.Stop()
	w.Stop()
}

func TestInitialScanProcessesExistingFiles(t *testing.T) {
	w, archive, inbox := newFixture(t, 50*time.Millisecond)
	if err := os.MkdirAll(inbox, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(inbox, "pre.json")
	if err := os.WriteFile(path, []byte(`{"problem_analysis": {}, "title": "preexisting"}`), 0644); err != nil {
		t.Fatal(err)
	}
	// Non-report files are left alone.
	if err := os.WriteFile(filepath.Join(inbox, "notes.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	waitFor(t, 5*time.Second, func() bool {
		n, _ := archive.Count()
		return n == 1
	})

	if _, err := os.Stat(path + ".done"); err != nil {
		t.Errorf("processed file not renamed: %v", err)
	}
	entries, err := archive.List(10)
	if err != nil || len(entries) != 1 {
		t.Fatalf("List = %v, %v", entries, err)
	}
	if entries[0].Title != "preexisting" {
		t.Errorf("archived title = %q", entries[0].Title)
	}
}

func TestDroppedFileIsProcessed(t *testing.T) {
	w, archive, inbox := newFixture(t, 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(inbox, "dropped.json")
	if err := os.WriteFile(path, []byte(`{"version": "1.0.0", "problem_analysis": {}}`), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, 5*time.Second, func() bool {
		return w.Stats().Processed == 1
	})

	n, _ := archive.Count()
	if n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}
	entries, _ := archive.List(1)
	if !entries[0].Migrated {
		t.Error("legacy report archived without migration flag")
	}
}

func TestUnparseableFileMarkedFailed(t *testing.T) {
	w, archive, inbox := newFixture(t, 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(inbox, "garbage.json")
	if err := os.WriteFile(path, []byte("this is not json"), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, 5*time.Second, func() bool {
		return w.Stats().Failed == 1
	})

	if _, err := os.Stat(path + ".failed"); err != nil {
		t.Errorf("failed file not renamed: %v", err)
	}
	if n, _ := archive.Count(); n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}
