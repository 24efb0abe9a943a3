// Package watch keeps the catalog in sync with a directory of YAML item files.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kailas-cloud/similar/internal/domain"
	"github.com/kailas-cloud/similar/internal/domain/item"
	"github.com/kailas-cloud/similar/internal/repository/catalog"
)

// fileImporter writes the items of one file to the catalog.
type fileImporter interface {
	ImportFile(ctx context.Context, path string) ([]*item.Record, error)
}

// itemDeleter removes items from the catalog.
type itemDeleter interface {
	Delete(ctx context.Context, kind item.Kind, id string) error
}

// changeType is what a filesystem event means for the catalog.
type changeType int

const (
	changeUpsert changeType = iota + 1
	changeRemove
)

type change struct {
	typ  changeType
	path string
}

type itemRef struct {
	kind item.Kind
	id   string
}

// Watcher imports item files on start and then follows creates, writes, removals and renames.
// Every catalog write publishes a mutation event, which in turn flushes the result cache.
type Watcher struct {
	dir      string
	importer fileImporter
	deleter  itemDeleter
	logger   *zap.Logger

	mu    sync.Mutex
	known map[string][]itemRef // file path -> items it defined
}

// New creates a watcher over dir.
func New(dir string, importer fileImporter, deleter itemDeleter, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		dir:      dir,
		importer: importer,
		deleter:  deleter,
		logger:   logger,
		known:    make(map[string][]itemRef),
	}
}

// Sync imports every item file under the directory. Returns the number of items written.
// A file that fails to import is logged and skipped; its error is joined into the result.
func (w *Watcher) Sync(ctx context.Context) (int, error) {
	ctx, publish := catalog.DeferEvents(ctx)
	defer publish()
	return w.syncDir(ctx, w.dir)
}

func (w *Watcher) syncDir(ctx context.Context, root string) (int, error) {
	var (
		total int
		errs  []error
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !catalog.IsItemFile(path) {
			return nil
		}
		n, err := w.upsert(ctx, path)
		if err != nil {
			w.logger.Warn("Skipping item file", zap.String("path", path), zap.Error(err))
			errs = append(errs, err)
		}
		total += n
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return total, fmt.Errorf("sync %s: %w", root, err)
	}
	return total, nil
}

// Run syncs the directory and then applies filesystem changes until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := w.addDirs(fw, w.dir); err != nil {
		return err
	}
	n, err := w.Sync(ctx)
	if err != nil {
		w.logger.Warn("Content directory synced with errors", zap.String("dir", w.dir), zap.Int("items", n), zap.Error(err))
	} else {
		w.logger.Info("Content directory synced", zap.String("dir", w.dir), zap.Int("items", n))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && !isHidden(ev.Name) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					// Files can land in a new directory before it is watched.
					if err := w.addDirs(fw, ev.Name); err != nil {
						w.logger.Warn("Failed to watch new directory", zap.String("dir", ev.Name), zap.Error(err))
					} else if _, err := w.syncDir(ctx, ev.Name); err != nil {
						w.logger.Warn("Failed to sync new directory", zap.String("dir", ev.Name), zap.Error(err))
					}
					continue
				}
			}
			if c := w.handleFsEvent(ev); c != nil {
				w.apply(ctx, c)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Filesystem watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) syncNewDir(ctx context.Context, dir string) (int, error) {
	ctx, publish := catalog.DeferEvents(ctx)
	defer publish()
	return w.syncDir(ctx, dir)
}

// handleFsEvent translates an fsnotify event. Directories, hidden files, chmod-only events
// and non-item files yield nil. A rename reports the old path; the new name arrives as Create.
func (w *Watcher) handleFsEvent(ev fsnotify.Event) *change {
	if isHidden(ev.Name) || !catalog.IsItemFile(ev.Name) {
		return nil
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return &change{typ: changeRemove, path: ev.Name}
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		return &change{typ: changeUpsert, path: ev.Name}
	default:
		return nil
	}
}

func (w *Watcher) apply(ctx context.Context, c *change) {
	var err error
	switch c.typ {
	case changeUpsert:
		_, err = w.upsert(ctx, c.path)
	case changeRemove:
		err = w.remove(ctx, c.path)
	}
	if err != nil {
		w.logger.Warn("Failed to apply content change", zap.String("path", c.path), zap.Error(err))
	}
}

func (w *Watcher) upsert(ctx context.Context, path string) (int, error) {
	recs, err := w.importer.ImportFile(ctx, path)
	if err != nil {
		return 0, err
	}

	refs := make([]itemRef, len(recs))
	current := make(map[itemRef]struct{}, len(recs))
	for i, rec := range recs {
		refs[i] = itemRef{kind: rec.Kind(), id: rec.ID()}
		current[refs[i]] = struct{}{}
	}

	w.mu.Lock()
	previous := w.known[path]
	w.known[path] = refs
	w.mu.Unlock()

	// Items dropped from an edited file are removed.
	for _, ref := range previous {
		if _, ok := current[ref]; ok {
			continue
		}
		if err := w.deleteItem(ctx, ref); err != nil {
			return len(recs), err
		}
	}
	return len(recs), nil
}

func (w *Watcher) remove(ctx context.Context, path string) error {
	w.mu.Lock()
	refs := w.known[path]
	delete(w.known, path)
	w.mu.Unlock()

	var errs []error
	for _, ref := range refs {
		if err := w.deleteItem(ctx, ref); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *Watcher) deleteItem(ctx context.Context, ref itemRef) error {
	err := w.deleter.Delete(ctx, ref.kind, ref.id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete %s %s: %w", ref.kind, ref.id, err)
	}
	return nil
}

func (w *Watcher) addDirs(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
