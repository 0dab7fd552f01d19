package am

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/logger"
)

// DefaultConfigDebounce is the quiet period before a changed config file is reloaded.
const DefaultConfigDebounce = 500 * time.Millisecond

// ReloadCallback receives the configuration after a successful reload.
type ReloadCallback func(*Config) error

// ConfigWatcher reloads the configuration when one config file changes.
// The file's directory is watched, so saves that replace the file by
// rename are seen and rotating backups next to it are not.
type ConfigWatcher struct {
	path string
	fsw  *fsnotify.Watcher

	mu        sync.Mutex
	debounce  time.Duration
	timer     *time.Timer
	callbacks []ReloadCallback
	lastWrite time.Time

	started atomic.Bool
	done    chan struct{}
}

var (
	globalWatcher   *ConfigWatcher
	globalWatcherMu sync.Mutex
)

// NewConfigWatcher prepares a watcher for path. Nothing is delivered until Start.
func NewConfigWatcher(path string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", path)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "failed to watch config directory of %s", abs)
	}

	return &ConfigWatcher{
		path:     abs,
		fsw:      fsw,
		debounce: DefaultConfigDebounce,
		done:     make(chan struct{}),
	}, nil
}

// Path returns the absolute path of the watched file.
func (cw *ConfigWatcher) Path() string { return cw.path }

// SetDebounce overrides the quiet period. It also bounds how long a
// MarkOwnWrite suppresses change events.
func (cw *ConfigWatcher) SetDebounce(d time.Duration) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.debounce = d
}

// OnReload registers cb. Callbacks run in registration order.
func (cw *ConfigWatcher) OnReload(cb ReloadCallback) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, cb)
}

// MarkOwnWrite tells the watcher the next change to the file comes from
// this process (am set, UpdateSetting) and must not trigger a reload.
func (cw *ConfigWatcher) MarkOwnWrite() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.lastWrite = time.Now()
}

func (cw *ConfigWatcher) ownWrite() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return !cw.lastWrite.IsZero() && time.Since(cw.lastWrite) < cw.debounce
}

// Start runs the watch loop in the background. Calling it twice is a no-op.
func (cw *ConfigWatcher) Start() {
	if cw.started.Swap(true) {
		return
	}
	go cw.loop()
}

func (cw *ConfigWatcher) loop() {
	defer close(cw.done)
	for {
		select {
		case ev, ok := <-cw.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != cw.path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if cw.ownWrite() {
				logger.Debugw("Config watcher ignoring own write",
					logger.FieldFile, ev.Name)
				continue
			}
			logger.Infow("Config file changed",
				logger.FieldFile, ev.Name,
				logger.FieldOperation, ev.Op.String())
			cw.schedule()

		case err, ok := <-cw.fsw.Errors:
			if !ok {
				return
			}
			logger.Warnw("Config watcher error",
				logger.FieldError, err)
		}
	}
}

// schedule restarts the debounce timer.
func (cw *ConfigWatcher) schedule() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounce, func() {
		if err := cw.reload(); err != nil {
			logger.Errorw("Config reload failed",
				logger.FieldFile, cw.path,
				logger.FieldError, err)
		}
	})
}

// reload rebuilds the global config and hands it to every callback.
// A config that fails validation is not delivered.
func (cw *ConfigWatcher) reload() error {
	Reset()
	cfg, err := Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "reloaded config is invalid")
	}

	cw.mu.Lock()
	callbacks := append([]ReloadCallback(nil), cw.callbacks...)
	cw.mu.Unlock()

	logger.Infow("Config reloaded",
		logger.FieldFile, cw.path,
		logger.FieldCount, len(callbacks))

	for _, cb := range callbacks {
		if err := cb(cfg); err != nil {
			logger.Warnw("Config reload callback failed",
				logger.FieldError, err)
		}
	}
	return nil
}

// Stop cancels a pending reload, closes the fsnotify watcher and waits for
// the loop to exit.
func (cw *ConfigWatcher) Stop() error {
	cw.mu.Lock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.mu.Unlock()

	err := cw.fsw.Close()
	if cw.started.Load() {
		<-cw.done
	}
	return err
}

// SetGlobalWatcher registers the watcher persist.go reports its writes to.
// Pass nil to unregister.
func SetGlobalWatcher(w *ConfigWatcher) {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	globalWatcher = w
}

// GetGlobalWatcher returns the registered watcher, or nil.
func GetGlobalWatcher() *ConfigWatcher {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	return globalWatcher
}
