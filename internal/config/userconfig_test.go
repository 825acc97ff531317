package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/asheshgoplani/sheetdeck/internal/host"
	"github.com/asheshgoplani/sheetdeck/internal/sheet"
)

func TestUserConfig_Decode(t *testing.T) {
	var config UserConfig
	_, err := toml.Decode(`
theme = "light"

[sheet]
heading = "Filters"
size = "full"
block_bg = true
drag_close = false
progress_mode = "inf"
drag_threshold = 60

[style]
sheet_delay = "450ms"

[style.properties]
accent = "#ff8800"

[logs.components]
gesture = "debug"
`, &config)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	if config.Theme != "light" {
		t.Errorf("Theme = %q, want light", config.Theme)
	}
	if config.Sheet.GetDragClose() {
		t.Error("GetDragClose() = true, want false")
	}
	if config.Sheet.DragThreshold != 60 {
		t.Errorf("DragThreshold = %d, want 60", config.Sheet.DragThreshold)
	}
	if config.Style.Properties["accent"] != "#ff8800" {
		t.Errorf("Properties[accent] = %q", config.Style.Properties["accent"])
	}
	if config.Logs.Components["gesture"] != "debug" {
		t.Errorf("Logs.Components[gesture] = %q, want debug", config.Logs.Components["gesture"])
	}
}

func TestSheetSettings_PanelConfig(t *testing.T) {
	s := SheetSettings{
		Heading:      "Share",
		Size:         "full",
		BlockBg:      true,
		ProgressMode: "determinate",
		CTAPrimary:   "Send",
	}
	cfg := s.PanelConfig()

	if cfg.Size != sheet.SizeFull {
		t.Errorf("Size = %q, want full", cfg.Size)
	}
	if !cfg.DragClose {
		t.Error("DragClose should default to true")
	}
	if cfg.IconLeft != "back" || cfg.IconRight != "close" {
		t.Errorf("icons = %q/%q, want back/close", cfg.IconLeft, cfg.IconRight)
	}
	if cfg.ProgressMode != sheet.ProgressDeterminate {
		t.Errorf("ProgressMode = %q, want int", cfg.ProgressMode)
	}
	if cfg.CTAPrimary != "Send" {
		t.Errorf("CTAPrimary = %q", cfg.CTAPrimary)
	}
}

func TestSheetSettings_StartupDelay(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", sheet.DefaultStartupDelay},
		{"40ms", 40 * time.Millisecond},
		{"25", 25 * time.Millisecond},
		{"soon", sheet.DefaultStartupDelay},
	}
	for _, tt := range tests {
		s := SheetSettings{StartupDelay: tt.in}
		if got := s.GetStartupDelay(); got != tt.want {
			t.Errorf("GetStartupDelay(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStyleSettings_Apply(t *testing.T) {
	styles := host.NewStyleSheet()
	StyleSettings{
		SheetDelay: "120ms",
		Properties: map[string]string{"--accent": "red", "gap": "2"},
	}.Apply(styles)

	if got := styles.Duration("any", host.DelayProperty, 0); got != 120*time.Millisecond {
		t.Errorf("delay = %v, want 120ms", got)
	}
	if v, _ := styles.Property("", "--accent"); v != "red" {
		t.Errorf("--accent = %q", v)
	}
	if v, _ := styles.Property("", "--gap"); v != "2" {
		t.Errorf("--gap = %q", v)
	}
}

func TestLoadUserConfig_Missing(t *testing.T) {
	withHome(t)

	config, err := LoadUserConfig()
	if err != nil {
		t.Fatalf("LoadUserConfig() error = %v", err)
	}
	if config.Theme != "" {
		t.Errorf("Theme = %q, want empty", config.Theme)
	}
	if got := GetTheme(); got != "dark" {
		t.Errorf("GetTheme() = %q, want dark", got)
	}
	if got := GetStyleSettings().SheetDelay; got != host.DefaultDelay.String() {
		t.Errorf("SheetDelay = %q, want %s", got, host.DefaultDelay)
	}
}

func TestLoadUserConfig_ParseError(t *testing.T) {
	dir := withHome(t)
	writeConfig(t, dir, "theme = [broken")

	config, err := LoadUserConfig()
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "config.toml parse error") {
		t.Errorf("error = %v", err)
	}
	if config == nil {
		t.Fatal("defaults should be returned with the error")
	}

	// The defaults are cached, so the error is reported once
	if _, err := LoadUserConfig(); err != nil {
		t.Errorf("second load error = %v", err)
	}
}

func TestLoadUserConfig_Cached(t *testing.T) {
	dir := withHome(t)
	writeConfig(t, dir, `theme = "light"`)

	if got := GetTheme(); got != "light" {
		t.Fatalf("GetTheme() = %q, want light", got)
	}

	writeConfig(t, dir, `theme = "system"`)
	if got := GetTheme(); got != "light" {
		t.Errorf("cached GetTheme() = %q, want light", got)
	}

	if _, err := ReloadUserConfig(); err != nil {
		t.Fatalf("ReloadUserConfig() error = %v", err)
	}
	if got := GetTheme(); got != "system" {
		t.Errorf("reloaded GetTheme() = %q, want system", got)
	}
}

func TestGetSettingsDefaults(t *testing.T) {
	withHome(t)

	s := GetSheetSettings()
	if s.DragThreshold != sheet.DefaultDragThreshold {
		t.Errorf("DragThreshold = %d", s.DragThreshold)
	}
	if s.CellHeight != 20 {
		t.Errorf("CellHeight = %d, want 20", s.CellHeight)
	}

	logs := GetLogSettings()
	if logs.DebugLevel != "info" || logs.DebugMaxMB != 10 || logs.AggregateIntervalS != 30 {
		t.Errorf("log defaults = %+v", logs)
	}
}

func TestResolveTheme(t *testing.T) {
	withHome(t)
	if got := ResolveTheme("light"); got != "light" {
		t.Errorf("ResolveTheme(light) = %q", got)
	}
	if got := ResolveTheme("bogus"); got != "dark" {
		t.Errorf("ResolveTheme(bogus) = %q", got)
	}
	if got := ResolveTheme("system"); got != "dark" && got != "light" {
		t.Errorf("ResolveTheme(system) = %q", got)
	}
}

func TestSaveUserConfig(t *testing.T) {
	dir := withHome(t)

	config := &UserConfig{Theme: "light", Style: StyleSettings{SheetDelay: "200ms"}}
	if err := SaveUserConfig(config); err != nil {
		t.Fatalf("SaveUserConfig() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, UserConfigFileName+".tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}

	loaded, err := LoadUserConfig()
	if err != nil {
		t.Fatalf("LoadUserConfig() error = %v", err)
	}
	if loaded.Style.SheetDelay != "200ms" {
		t.Errorf("SheetDelay = %q, want 200ms", loaded.Style.SheetDelay)
	}
}

func TestCreateExampleConfig(t *testing.T) {
	dir := withHome(t)

	path, err := CreateExampleConfig()
	if err != nil {
		t.Fatalf("CreateExampleConfig() error = %v", err)
	}
	if path != filepath.Join(dir, UserConfigFileName) {
		t.Errorf("path = %q", path)
	}

	var config UserConfig
	if _, err := toml.DecodeFile(path, &config); err != nil {
		t.Fatalf("example config does not parse: %v", err)
	}
	if config.Style.SheetDelay != "300ms" {
		t.Errorf("SheetDelay = %q", config.Style.SheetDelay)
	}

	// An existing file is left alone
	writeConfig(t, dir, `theme = "light"`)
	if _, err := CreateExampleConfig(); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `theme = "light"` {
		t.Error("existing config was overwritten")
	}
}
