package session

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reconciler watches the sessions scratch directory for buffers abandoned
// by a crashed or killed hook process — one that buffered events but never
// received a terminal Stop event, so Compress never ran. It force-compresses
// any buffer that has gone untouched for longer than StaleAfter.
//
// The normal compression path (Stop -> Compress) is synchronous inside the
// single-shot hook binary and does not go through this watcher; Reconciler
// only exists for the crash-recovery case.
type Reconciler struct {
	dir        string
	staleAfter time.Duration
	compress   func(path, sessionID string)
	watcher    *fsnotify.Watcher
	done       chan struct{}
	logger     *slog.Logger
}

// NewReconciler creates a watcher for the sessions directory under
// baseDir. compress is called with the buffer path and session id for
// every file found stale, both at startup and whenever an fsnotify write
// event fires a subsequent staleness check.
func NewReconciler(baseDir string, staleAfter time.Duration, compress func(path, sessionID string), logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		dir:        filepath.Join(baseDir, "sessions"),
		staleAfter: staleAfter,
		compress:   compress,
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Start begins watching. It first sweeps the directory for buffers
// already stale, then watches for further writes. Call Stop to clean up.
func (r *Reconciler) Start() error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	r.sweep()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(r.dir); err != nil {
		_ = w.Close()
		return err
	}
	r.watcher = w

	go r.loop()
	r.logger.Debug("session: watching for abandoned buffers", "dir", r.dir, "stale_after", r.staleAfter)
	return nil
}

// Stop shuts down the watcher.
func (r *Reconciler) Stop() {
	if r.watcher != nil {
		_ = r.watcher.Close()
	}
	<-r.done
}

func (r *Reconciler) loop() {
	defer close(r.done)
	ticker := time.NewTicker(r.staleAfter / 2)
	defer ticker.Stop()
	for {
		select {
		case evt, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				r.checkStale(evt.Name)
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Debug("session: watcher error", "error", err)
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Reconciler) sweep() {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		r.checkStale(filepath.Join(r.dir, entry.Name()))
	}
}

func (r *Reconciler) checkStale(path string) {
	if !strings.HasSuffix(path, ".jsonl") {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return // already compressed/removed by another process
	}
	if time.Since(info.ModTime()) < r.staleAfter {
		return
	}

	sessionID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	if r.compress != nil {
		r.compress(path, sessionID)
	}
}
