package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

// Watcher reloads config.toml when it changes on disk and delivers the new
// config on Changes. The directory is watched rather than the file so
// atomic rename-over saves are seen.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher

	changeCh chan *UserConfig
	errCh    chan error

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewWatcher creates a watcher for the user config file. Call Run to begin
// watching.
func NewWatcher(parent context.Context) (*Watcher, error) {
	path, err := GetUserConfigPath()
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	ctx, cancel := context.WithCancel(parent)
	return &Watcher{
		path:     path,
		watcher:  fw,
		changeCh: make(chan *UserConfig, 1),
		errCh:    make(chan error, 1),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Changes receives the reloaded config after each change. Only the latest
// config is kept when the consumer falls behind.
func (w *Watcher) Changes() <-chan *UserConfig {
	return w.changeCh
}

// Errors receives parse errors of the reloaded file.
func (w *Watcher) Errors() <-chan error {
	return w.errCh
}

// Run blocks until the context is cancelled or Close is called.
func (w *Watcher) Run() error {
	var debounce *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			configLog.Warn("config_watcher_error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := ReloadUserConfig()
	if err != nil {
		select {
		case w.errCh <- err:
		default:
		}
		return
	}
	configLog.Info("config_reloaded",
		slog.String("path", w.path),
		slog.String("sheet_delay", cfg.Style.SheetDelay))
	// Replace a stale pending config with the fresh one
	select {
	case <-w.changeCh:
	default:
	}
	w.changeCh <- cfg
}

// Close stops the watcher. Safe to call multiple times.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		err = w.watcher.Close()
	})
	return err
}
