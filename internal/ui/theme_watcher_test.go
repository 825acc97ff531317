package ui

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeWatcherKeepsLatestSetting(t *testing.T) {
	events := make(chan bool)
	errs := make(chan error)
	cancelled := make(chan struct{})
	tw := startThemeWatcher(func() { close(cancelled) }, events, errs)

	events <- true
	events <- false
	events <- true
	events <- false
	// Received only after the last setting was published
	errs <- errors.New("dbus hiccup")

	select {
	case got := <-tw.Changes():
		assert.False(t, got)
	case <-time.After(time.Second):
		t.Fatal("no theme change delivered")
	}

	tw.Close()
	tw.Close()
	select {
	case <-cancelled:
	default:
		t.Fatal("watch context not cancelled")
	}
}

func TestThemeWatcherSurvivesClosedErrors(t *testing.T) {
	events := make(chan bool)
	errs := make(chan error)
	tw := startThemeWatcher(func() {}, events, errs)
	close(errs)

	events <- true
	select {
	case got := <-tw.Changes():
		assert.True(t, got)
	case <-time.After(time.Second):
		t.Fatal("events stopped after errors closed")
	}

	close(events)
	select {
	case <-tw.done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop when events closed")
	}
	tw.Close()
}

func TestWaitForTheme(t *testing.T) {
	assert.Nil(t, waitForTheme(nil))

	ch := make(chan bool, 1)
	ch <- true
	msg := waitForTheme(ch)()
	require.IsType(t, themeChangedMsg{}, msg)
	assert.True(t, msg.(themeChangedMsg).dark)

	close(ch)
	assert.Nil(t, waitForTheme(ch)())
}
