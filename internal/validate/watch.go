// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/govmeta/internal/logger"
)

// DefaultDebounce is how long changes are collected before re-validating.
const DefaultDebounce = 200 * time.Millisecond

// Watcher re-validates files matching a set of patterns when they change.
type Watcher struct {
	patterns []string
	loader   Loader
	out      io.Writer
	log      *logger.Logger
	debounce time.Duration
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewWatcher creates a watcher over the directories the patterns can match.
// Nothing is watched until Run is called.
func NewWatcher(patterns []string, l Loader, out io.Writer, log *logger.Logger, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		patterns: patterns,
		loader:   l,
		out:      out,
		log:      log,
		debounce: debounce,
		fsw:      fsw,
		pending:  make(map[string]struct{}),
	}, nil
}

// Run watches until ctx is cancelled. Each batch of changed files that still
// exist is validated and reported on the watcher's writer.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	for _, dir := range watchRoots(w.patterns) {
		if err := w.addRecursive(dir); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "error", err)

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.log.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if !Match(w.patterns, event.Name) {
		return
	}

	w.mu.Lock()
	w.pending[filepath.Clean(event.Name)] = struct{}{}
	w.mu.Unlock()
	w.log.Debug("change detected", "path", event.Name, "op", event.Op.String())
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	sort.Strings(paths)
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		File(ctx, w.loader, p, w.out)
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// watchRoots returns the deepest glob-free directory of each pattern.
func watchRoots(patterns []string) []string {
	seen := make(map[string]bool)
	var roots []string
	for _, pattern := range patterns {
		root := filepath.Dir(pattern)
		if containsGlob(pattern) {
			root = globBase(pattern)
		}
		root = filepath.Clean(root)
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	sort.Strings(roots)
	return roots
}

func globBase(pattern string) string {
	parts := strings.Split(filepath.ToSlash(pattern), "/")
	var base []string
	for _, p := range parts[:len(parts)-1] {
		if containsGlob(p) {
			break
		}
		base = append(base, p)
	}
	if len(base) == 0 {
		return "."
	}
	joined := strings.Join(base, "/")
	if joined == "" {
		return "/"
	}
	return filepath.FromSlash(joined)
}
