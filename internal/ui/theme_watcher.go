package ui

import (
	"context"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	dark "github.com/thiagokokada/dark-mode-go"
)

// ThemeWatcher follows the OS dark mode setting for theme = "system".
// Only the most recent setting is kept; a reader that falls behind sees
// the latest value, not a backlog.
type ThemeWatcher struct {
	latest chan bool // true=dark
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewThemeWatcher starts watching. It returns nil when the platform
// cannot report dark mode changes.
func NewThemeWatcher(parent context.Context) *ThemeWatcher {
	ctx, cancel := context.WithCancel(parent)
	events, errs, err := dark.WatchDarkMode(ctx)
	if err != nil {
		cancel()
		uiLog.Warn("theme_watcher_init_failed", slog.String("error", err.Error()))
		return nil
	}
	return startThemeWatcher(cancel, events, errs)
}

func startThemeWatcher(cancel context.CancelFunc, events <-chan bool, errs <-chan error) *ThemeWatcher {
	tw := &ThemeWatcher{
		latest: make(chan bool, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(tw.done)
		defer cancel()
		tw.forward(events, errs)
	}()
	return tw
}

// forward relays settings until events closes or Close is called. A closed
// error channel is dropped from the select.
func (tw *ThemeWatcher) forward(events <-chan bool, errs <-chan error) {
	for {
		select {
		case <-tw.stop:
			return
		case isDark, ok := <-events:
			if !ok {
				uiLog.Debug("theme_watcher_events_closed")
				return
			}
			tw.publish(isDark)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				uiLog.Warn("theme_watcher_error", slog.String("error", err.Error()))
			}
		}
	}
}

// publish replaces any unread setting with isDark.
func (tw *ThemeWatcher) publish(isDark bool) {
	select {
	case <-tw.latest:
	default:
	}
	tw.latest <- isDark
}

// Changes receives dark mode changes.
func (tw *ThemeWatcher) Changes() <-chan bool {
	return tw.latest
}

// Close stops the watcher and waits for its goroutine. Safe to call more
// than once.
func (tw *ThemeWatcher) Close() {
	tw.once.Do(func() { close(tw.stop) })
	<-tw.done
}

type themeChangedMsg struct{ dark bool }

func waitForTheme(ch <-chan bool) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		isDark, ok := <-ch
		if !ok {
			return nil
		}
		return themeChangedMsg{dark: isDark}
	}
}
