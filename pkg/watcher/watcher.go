package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"ShortletAssistant/pkg/knowledge"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Sink receives the bundles found in the seed directory.
type Sink interface {
	ApplyBundle(ctx context.Context, source string, bundle *knowledge.Bundle) error
	RemoveProperties(ctx context.Context, source string, propertyIDs []string) error
}

type SeedWatcher struct {
	dir      string
	sink     Sink
	log      *logrus.Logger
	debounce time.Duration

	mu    sync.Mutex
	files map[string][]string
}

func NewSeedWatcher(dir string, sink Sink, logger *logrus.Logger) *SeedWatcher {
	return &SeedWatcher{
		dir:      dir,
		sink:     sink,
		log:      logger,
		debounce: 250 * time.Millisecond,
		files:    make(map[string][]string),
	}
}

func IsBundleFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadAll applies every bundle in the directory in name order and returns the
// number of files loaded.
func (w *SeedWatcher) LoadAll(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && IsBundleFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if err := w.load(ctx, filepath.Join(w.dir, name)); err != nil {
			return 0, err
		}
	}
	return len(names), nil
}

// Watch re-applies bundle files as they change until ctx is done.
func (w *SeedWatcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return err
	}

	go func() {
		defer fsw.Close()

		pending := make(map[string]fsnotify.Op)
		timer := time.NewTimer(w.debounce)
		timer.Stop()

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !IsBundleFile(event.Name) {
					continue
				}
				pending[event.Name] |= event.Op
				timer.Reset(w.debounce)
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				w.log.WithField("error", err.Error()).Warn("Seed watcher error")
			case <-timer.C:
				for path, op := range pending {
					w.handle(ctx, path, op)
				}
				pending = make(map[string]fsnotify.Op)
			}
		}
	}()
	return nil
}

func (w *SeedWatcher) handle(ctx context.Context, path string, op fsnotify.Op) {
	if _, err := os.Stat(path); err != nil && (op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)) {
		if err := w.unload(ctx, path); err != nil {
			w.log.WithFields(logrus.Fields{"file": path, "error": err.Error()}).Error("Failed to unload seed bundle")
		}
		return
	}

	if err := w.load(ctx, path); err != nil {
		w.log.WithFields(logrus.Fields{"file": path, "error": err.Error()}).Error("Failed to reload seed bundle")
	}
}

func (w *SeedWatcher) load(ctx context.Context, path string) error {
	bundle, err := knowledge.LoadBundleFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	ids := make([]string, 0, len(bundle.Properties))
	present := make(map[string]struct{}, len(bundle.Properties))
	for _, property := range bundle.Properties {
		ids = append(ids, property.PropertyID)
		present[property.PropertyID] = struct{}{}
	}

	w.mu.Lock()
	previous := w.files[path]
	w.mu.Unlock()

	var dropped []string
	for _, id := range previous {
		if _, ok := present[id]; !ok {
			dropped = append(dropped, id)
		}
	}
	if len(dropped) > 0 {
		if err := w.sink.RemoveProperties(ctx, path, dropped); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := w.sink.ApplyBundle(ctx, path, bundle); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	w.mu.Lock()
	w.files[path] = ids
	w.mu.Unlock()

	w.log.WithFields(logrus.Fields{"file": path, "properties": len(ids)}).Info("Seed bundle loaded")
	return nil
}

func (w *SeedWatcher) unload(ctx context.Context, path string) error {
	w.mu.Lock()
	ids, ok := w.files[path]
	delete(w.files, path)
	w.mu.Unlock()

	if !ok || len(ids) == 0 {
		return nil
	}
	w.log.WithFields(logrus.Fields{"file": path, "properties": len(ids)}).Info("Seed bundle removed")
	return w.sink.RemoveProperties(ctx, path, ids)
}
