// Package watch runs the inbox watcher: report files dropped into a
// directory are validated through the pipeline and archived. Producers
// write whole files and rapid rewrites are common, so events are
// debounced per path before processing.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"sparlo/internal/logging"
	"sparlo/internal/pipeline"
	"sparlo/internal/store"
)

// Stats tracks watcher activity for debugging and tests.
type Stats struct {
	FilesSeen     int
	Processed     int
	Failed        int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

// Watcher validates report files appearing in an inbox directory.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	pipe        *pipeline.Pipeline
	archive     *store.Store
	inboxDir    string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// NewWatcher creates an inbox watcher. The inbox directory is created on
// Start if it does not exist.
func NewWatcher(inboxDir string, pipe *pipeline.Pipeline, archive *store.Store, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		watcher:     fsw,
		pipe:        pipe,
		archive:     archive,
		inboxDir:    inboxDir,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start scans existing inbox files, then begins watching. Non-blocking;
// the event loop runs in a goroutine until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.inboxDir, 0755); err != nil {
		return err
	}
	if err := w.watcher.Add(w.inboxDir); err != nil {
		return err
	}
	logging.Watch("watching inbox: %s", w.inboxDir)

	if err := w.scanExisting(ctx); err != nil {
		logging.WatchWarn("initial scan: %v", err)
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.WatchWarn("closing watcher: %v", err)
	}
	logging.Watch("stopped")
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// scanExisting processes files already sitting in the inbox when the
// watcher starts, a few at a time.
func (w *Watcher) scanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.inboxDir)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, e := range entries {
		if e.IsDir() || !isInboxFile(e.Name()) {
			continue
		}
		path := filepath.Join(w.inboxDir, e.Name())
		g.Go(func() error {
			w.process(ctx, path)
			return nil
		})
	}
	return g.Wait()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WatchWarn("watch error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			w.processSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !isInboxFile(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	if _, pending := w.debounceMap[event.Name]; !pending {
		w.stats.FilesSeen++
	}
	w.debounceMap[event.Name] = time.Now()
}

// processSettled picks up paths whose events have settled past the
// debounce window.
func (w *Watcher) processSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, last := range w.debounceMap {
		if now.Sub(last) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		w.process(ctx, path)
	}
}

// process validates one inbox file and archives the outcome. The file is
// renamed with a .done or .failed suffix so restarts never reprocess it.
func (w *Watcher) process(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		logging.WatchWarn("reading %s: %v", path, err)
		w.bumpFailed(path, false)
		return
	}

	out, err := w.pipe.ProcessText(string(data))
	if err != nil {
		logging.WatchWarn("validation failed for %s: %v", path, err)
		w.bumpFailed(path, true)
		return
	}

	if _, err := w.archive.SaveOutcome(out, path); err != nil {
		logging.WatchWarn("archiving %s: %v", path, err)
		w.bumpFailed(path, false)
		return
	}

	logging.Watch("processed %s id=%s variant=%s migrated=%v", path, out.ID, out.Variant, out.Migrated)
	w.mu.Lock()
	w.stats.Processed++
	w.mu.Unlock()
	if err := os.Rename(path, path+".done"); err != nil {
		logging.WatchWarn("renaming %s: %v", path, err)
	}
}

func (w *Watcher) bumpFailed(path string, rename bool) {
	w.mu.Lock()
	w.stats.Failed++
	w.mu.Unlock()
	if rename {
		if err := os.Rename(path, path+".failed"); err != nil {
			logging.WatchWarn("renaming %s: %v", path, err)
		}
	}
}

func isInboxFile(name string) bool {
	return strings.HasSuffix(name, ".json")
}
