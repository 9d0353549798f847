package workspace

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// WatchOperation indicates the type of file change.
type WatchOperation string

const (
	OpCreate WatchOperation = "create"
	OpModify WatchOperation = "modify"
	OpDelete WatchOperation = "delete"
)

// WatchEvent is emitted for each source file that changed.
type WatchEvent struct {
	// Path is relative to the workspace root.
	Path      string
	Operation WatchOperation
	// File is the fresh parse; nil for deletions.
	File *File
}

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	// DebounceDelay is how long to collect changes before re-parsing.
	DebounceDelay time.Duration
	// Buffer is the event channel capacity.
	Buffer int
}

// Watcher re-parses source files as they change on disk.
type Watcher struct {
	ws       *Workspace
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op // path → most recent operation

	hashMu sync.Mutex
	hashes map[string]uint64 // path → content hash

	events  chan WatchEvent
	done    chan struct{}
	started atomic.Bool
}

// NewWatcher creates a watcher over the workspace root.
func NewWatcher(ws *Workspace, cfg WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create file watcher")
	}

	debounce := cfg.DebounceDelay
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = 100
	}

	return &Watcher{
		ws:       ws,
		watcher:  fsw,
		logger:   ws.logger,
		debounce: debounce,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]uint64),
		events:   make(chan WatchEvent, buffer),
		done:     make(chan struct{}),
	}, nil
}

// Events returns the channel of watch events. It is closed when the watcher
// stops.
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Seed records the content of already parsed files so that unchanged
// rewrites do not produce events.
func (w *Watcher) Seed(res *Result) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	for _, f := range res.Files {
		w.hashes[f.Path] = xxhash.Sum64String(f.Source)
	}
}

// Start adds watches below the root and processes events until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.ws.root); err != nil {
		return err
	}

	w.started.Store(true)
	go w.processEvents(ctx)

	w.logger.Info("file watcher started",
		"root", w.ws.root,
		"debounce", w.debounce)
	return nil
}

// Stop closes the underlying watcher and waits for event processing to end.
func (w *Watcher) Stop() error {
	err := w.watcher.Close()
	if w.started.Load() {
		<-w.done
	}
	return err
}

func skipDir(name string) bool {
	return (strings.HasPrefix(name, ".") && name != ".") || name == "target"
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		w.watch(path)
		return nil
	})
}

func (w *Watcher) watch(dir string) {
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("failed to watch directory", "path", dir, "error", err)
		return
	}
	w.logger.Debug("watching directory", "path", dir)
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.done)
	defer close(w.events)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	rel, err := filepath.Rel(w.ws.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	if !w.ws.Matches(rel) {
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
				w.watch(event.Name)
			}
		}
		return
	}

	w.pendingMu.Lock()
	w.pending[rel] = event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("file change detected", "path", rel, "op", event.Op.String())
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for rel, op := range toProcess {
		if ctx.Err() != nil {
			return
		}

		// editors often save by renaming over the original, so existence
		// decides, not the operation
		if !w.exists(rel) {
			w.forget(rel)
			w.send(WatchEvent{Path: rel, Operation: OpDelete})
			continue
		}

		f := w.ws.ParseFile(ctx, rel)
		sum := xxhash.Sum64String(f.Source)

		w.hashMu.Lock()
		old, had := w.hashes[rel]
		if had && old == sum && f.OK() {
			w.hashMu.Unlock()
			continue
		}
		w.hashes[rel] = sum
		w.hashMu.Unlock()

		event := WatchEvent{Path: rel, Operation: OpModify, File: f}
		if op.Has(fsnotify.Create) || !had {
			event.Operation = OpCreate
		}
		w.send(event)
	}
}

func (w *Watcher) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(w.ws.root, filepath.FromSlash(rel)))
	return err == nil
}

func (w *Watcher) forget(rel string) {
	w.hashMu.Lock()
	delete(w.hashes, rel)
	w.hashMu.Unlock()
}

func (w *Watcher) send(event WatchEvent) {
	select {
	case w.events <- event:
		w.logger.Debug("sent watch event", "path", event.Path, "op", event.Operation)
	default:
		w.logger.Warn("event channel full, dropping event", "path", event.Path)
	}
}
