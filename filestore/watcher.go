package filestore

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/logger"
	"github.com/teranos/filestore/model"
)

// ReloadCallback is called after a kind was reloaded from disk.
type ReloadCallback func(kind model.Kind)

// Watcher reloads kinds whose files change on disk.
type Watcher struct {
	dir      *Dir
	watcher  *fsnotify.Watcher
	debounce time.Duration
	kinds    map[string]model.Kind

	mu        sync.Mutex
	timers    map[model.Kind]*time.Timer
	callbacks []ReloadCallback
}

// NewWatcher watches every kind directory of d.
// debounce is the quiet period before a reload and also how long after a
// flush changes are treated as the Dir's own writes.
func NewWatcher(d *Dir, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	kinds := make(map[string]model.Kind, len(model.Kinds))
	for _, kind := range model.Kinds {
		path := d.KindDir(kind)
		if err := fw.Add(path); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", path)
		}
		kinds[filepath.Clean(path)] = kind
	}

	return &Watcher{
		dir:      d,
		watcher:  fw,
		debounce: debounce,
		kinds:    kinds,
		timers:   make(map[model.Kind]*time.Timer),
	}, nil
}

// OnReload registers a callback run after every reload.
func (w *Watcher) OnReload(cb ReloadCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Run watches until ctx is done, then releases the fsnotify watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.dir.logger.Warnw("Store watcher error",
				logger.FieldError, err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}
	if !isEntityFile(filepath.Base(event.Name)) {
		return
	}
	kind, ok := w.kinds[filepath.Dir(event.Name)]
	if !ok {
		return
	}
	if w.dir.ownWrite(kind, w.debounce) {
		w.dir.logger.Debugw("Store watcher ignoring own write",
			logger.FieldFile, event.Name)
		return
	}

	w.dir.logger.Debugw("Store watcher detected change",
		logger.FieldKind, kind,
		logger.FieldFile, event.Name,
		logger.FieldOperation, event.Op.String())
	w.schedule(ctx, kind)
}

// schedule debounces changes per kind.
func (w *Watcher) schedule(ctx context.Context, kind model.Kind) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[kind]; ok {
		t.Stop()
	}
	w.timers[kind] = time.AfterFunc(w.debounce, func() {
		w.reload(ctx, kind)
	})
}

func (w *Watcher) reload(ctx context.Context, kind model.Kind) {
	if ctx.Err() != nil {
		return
	}
	if err := w.dir.LoadKind(ctx, kind); err != nil {
		w.dir.logger.Errorw("Store reload failed",
			logger.FieldKind, kind,
			logger.FieldError, err)
		return
	}
	w.dir.logger.Infow("Store kind reloaded",
		logger.FieldKind, kind)

	w.mu.Lock()
	callbacks := make([]ReloadCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(kind)
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()

	if err := w.watcher.Close(); err != nil {
		w.dir.logger.Warnw("Store watcher close failed",
			logger.FieldError, err)
	}
}
