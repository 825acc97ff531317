package ui

import (
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// TestMain renders without color so views can be matched as plain text,
// and keeps config reads away from the real home directory.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "sheetdeck-ui-test")
	if err != nil {
		panic(err)
	}
	os.Setenv("SHEETDECK_HOME", dir)
	lipgloss.SetColorProfile(termenv.Ascii)

	code := m.Run()

	os.RemoveAll(dir)
	os.Exit(code)
}
