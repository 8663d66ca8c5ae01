package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads the configuration when files in the loader's directory
// change and notifies subscribers with the new value. It only watches in
// development; elsewhere Start is a no-op.
type Watcher struct {
	loader   *Loader
	logger   *zap.Logger
	debounce time.Duration

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	stopOnce  sync.Once
	done      chan struct{} // nil until Start watches
}

// NewWatcher creates a watcher seeded with the current configuration.
func NewWatcher(loader *Loader, initial *Config, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		loader:   loader,
		logger:   logger.Named("config"),
		debounce: defaultDebounce,
		config:   initial,
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching when the configuration is for development.
func (w *Watcher) Start() error {
	if !w.Current().IsDevelopment() {
		w.logger.Info("configuration hot reloading disabled",
			zap.String("environment", string(w.Current().Environment)),
		)
		return nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(w.loader.BasePath()); err != nil {
		fsWatcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.loader.BasePath(), err)
	}
	w.fsWatcher = fsWatcher
	w.done = make(chan struct{})

	go w.watchLoop()

	w.logger.Info("configuration hot reloading enabled", zap.String("dir", w.loader.BasePath()))
	return nil
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	defer w.fsWatcher.Close()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !isConfigFile(event.Name) {
				continue
			}
			w.logger.Debug("configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))

		case <-w.stopCh:
			return
		}
	}
}

// reload keeps the previous configuration when the new one fails to load.
func (w *Watcher) reload() {
	next, err := w.loader.Load()
	if err != nil {
		w.logger.Error("invalid configuration after reload, keeping previous", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.config = next
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logger.Info("configuration reloaded",
		zap.Strings("sources", next.LoadedFrom),
		zap.String("log_level", next.Observability.LogLevel),
	)

	for i, cb := range callbacks {
		w.notify(i, cb, next)
	}
}

func (w *Watcher) notify(idx int, cb func(*Config), cfg *Config) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("configuration callback panicked",
				zap.Int("callback_index", idx),
				zap.Any("panic", r),
			)
		}
	}()
	cb(cfg)
}

// OnChange registers a callback run after every successful reload.
func (w *Watcher) OnChange(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Current returns the latest configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Stop ends watching and waits for the loop to exit. Safe to call twice.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	if w.done != nil {
		<-w.done
	}
}

func isConfigFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
