// Package config loads the user configuration from
// $SHEETDECK_HOME/config.toml (default ~/.sheetdeck/config.toml).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	dark "github.com/thiagokokada/dark-mode-go"

	"github.com/asheshgoplani/sheetdeck/internal/host"
	"github.com/asheshgoplani/sheetdeck/internal/logging"
	"github.com/asheshgoplani/sheetdeck/internal/sheet"
)

var configLog = logging.ForComponent(logging.CompConfig)

// UserConfigFileName is the TOML config file for user preferences
const UserConfigFileName = "config.toml"

// HomeEnv overrides the config directory.
const HomeEnv = "SHEETDECK_HOME"

// ErrNoHome is returned when neither SHEETDECK_HOME nor a user home
// directory is available.
var ErrNoHome = errors.New("config: no home directory")

// UserConfig represents user-facing configuration in TOML format
type UserConfig struct {
	// Theme sets the color scheme: "dark" (default), "light", or "system"
	Theme string `toml:"theme"`

	// Sheet holds the facet defaults for the demo panel
	Sheet SheetSettings `toml:"sheet"`

	// Style holds custom properties copied into the host style sheet
	Style StyleSettings `toml:"style"`

	// Logs configures debug logging
	Logs LogSettings `toml:"logs"`
}

// SheetSettings are the initial facets of the panel.
type SheetSettings struct {
	Heading      string `toml:"heading"`
	Description  string `toml:"description"`
	Size         string `toml:"size"`
	Open         bool   `toml:"open"`
	BlockBg      bool   `toml:"block_bg"`
	DragClose    *bool  `toml:"drag_close"`
	IconLeft     string `toml:"icon_left"`
	IconRight    string `toml:"icon_right"`
	CTAPrimary   string `toml:"cta_primary"`
	CTASecondary string `toml:"cta_secondary"`
	ProgressMode string `toml:"progress_mode"`

	// DragThreshold is the dismiss distance in px-equivalent units
	// Default: 100
	DragThreshold int `toml:"drag_threshold"`

	// CellHeight is how many px-equivalent units one terminal row spans
	// Default: 20
	CellHeight int `toml:"cell_height"`

	// StartupDelay defers the first open, e.g. "16ms"
	StartupDelay string `toml:"startup_delay"`
}

// GetDragClose returns whether the drag handle is enabled, defaulting to true
func (s *SheetSettings) GetDragClose() bool {
	if s.DragClose == nil {
		return true
	}
	return *s.DragClose
}

// GetStartupDelay parses StartupDelay, falling back to the panel default
func (s *SheetSettings) GetStartupDelay() time.Duration {
	if s.StartupDelay == "" {
		return sheet.DefaultStartupDelay
	}
	d, ok := host.ParseDuration(s.StartupDelay)
	if !ok {
		return sheet.DefaultStartupDelay
	}
	return d
}

// PanelConfig converts the settings to a typed panel configuration.
func (s *SheetSettings) PanelConfig() sheet.Config {
	cfg := sheet.DefaultConfig()
	cfg.Heading = s.Heading
	cfg.Description = s.Description
	cfg.Size = sheet.ParseSize(s.Size)
	cfg.Open = s.Open
	cfg.BlockBg = s.BlockBg
	cfg.DragClose = s.GetDragClose()
	if s.IconLeft != "" {
		cfg.IconLeft = s.IconLeft
	}
	if s.IconRight != "" {
		cfg.IconRight = s.IconRight
	}
	cfg.CTAPrimary = s.CTAPrimary
	cfg.CTASecondary = s.CTASecondary
	cfg.ProgressMode = sheet.ParseProgressMode(s.ProgressMode)
	return cfg
}

// StyleSettings are style sheet custom properties.
type StyleSettings struct {
	// SheetDelay is the open/close transition duration, e.g. "300ms"
	SheetDelay string `toml:"sheet_delay"`

	// Properties are extra custom properties, keyed without the leading "--"
	Properties map[string]string `toml:"properties"`
}

// Apply copies the properties into the root of a style sheet. An empty
// sheet_delay leaves the current value alone.
func (s StyleSettings) Apply(styles *host.StyleSheet) {
	for name, v := range s.Properties {
		styles.Set("--"+strings.TrimPrefix(name, "--"), v)
	}
	if s.SheetDelay != "" {
		styles.Set(host.DelayProperty, s.SheetDelay)
	}
}

// LogSettings defines debug log configuration
type LogSettings struct {
	// DebugLevel sets the minimum log level: "debug", "info", "warn", "error"
	// Default: "info"
	DebugLevel string `toml:"debug_level"`

	// DebugFormat sets the log format: "json" (default) or "text"
	DebugFormat string `toml:"debug_format"`

	// DebugMaxMB is the max size in MB for debug.log before rotation
	// Default: 10
	DebugMaxMB int `toml:"debug_max_mb"`

	// DebugBackups is the number of rotated debug.log files to keep
	// Default: 5
	DebugBackups int `toml:"debug_backups"`

	// DebugRetentionDays is the number of days to keep rotated debug logs
	// Default: 10
	DebugRetentionDays int `toml:"debug_retention_days"`

	// DebugCompress enables gzip compression for rotated debug logs
	DebugCompress bool `toml:"debug_compress"`

	// RingBufferMB is the in-memory ring buffer size in MB for crash dumps
	// Default: 1
	RingBufferMB int `toml:"ring_buffer_mb"`

	// PprofAddr starts a pprof server on this address in debug mode
	PprofAddr string `toml:"pprof_addr"`

	// Components overrides DebugLevel per component, e.g. gesture = "debug"
	Components map[string]string `toml:"components"`

	// AggregateIntervalS is the event aggregation flush interval in seconds
	// Default: 30
	AggregateIntervalS int `toml:"aggregate_interval_secs"`
}

// Cache for user config (loaded once per process)
var (
	userConfigCache   *UserConfig
	userConfigCacheMu sync.RWMutex
)

// GetHomeDir returns the sheetdeck directory.
func GetHomeDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "", ErrNoHome
	}
	return filepath.Join(homeDir, ".sheetdeck"), nil
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	dir, err := GetHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, UserConfigFileName), nil
}

// LoadUserConfig loads the user configuration from TOML file.
// Returns cached config after first load. On a parse error the defaults are
// cached and the error is returned for display.
func LoadUserConfig() (*UserConfig, error) {
	userConfigCacheMu.RLock()
	if userConfigCache != nil {
		defer userConfigCacheMu.RUnlock()
		return userConfigCache, nil
	}
	userConfigCacheMu.RUnlock()

	userConfigCacheMu.Lock()
	defer userConfigCacheMu.Unlock()

	if userConfigCache != nil {
		return userConfigCache, nil
	}

	configPath, err := GetUserConfigPath()
	if err != nil {
		userConfigCache = &UserConfig{}
		return userConfigCache, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		userConfigCache = &UserConfig{}
		return userConfigCache, nil
	}

	var config UserConfig
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		userConfigCache = &UserConfig{}
		configLog.Warn("config_parse_failed", slog.String("path", configPath), slog.String("error", err.Error()))
		return userConfigCache, fmt.Errorf("config.toml parse error: %w", err)
	}

	userConfigCache = &config
	return userConfigCache, nil
}

// ReloadUserConfig forces a reload of the user config
func ReloadUserConfig() (*UserConfig, error) {
	ClearUserConfigCache()
	return LoadUserConfig()
}

// ClearUserConfigCache clears the cached user config.
// The next LoadUserConfig() call reads fresh from disk.
func ClearUserConfigCache() {
	userConfigCacheMu.Lock()
	userConfigCache = nil
	userConfigCacheMu.Unlock()
}

// SaveUserConfig writes the config atomically and clears the cache.
func SaveUserConfig(config *UserConfig) error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# sheetdeck configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// Write to a temp file, fsync, then rename over the original
	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if f, err := os.Open(tmpPath); err == nil {
		_ = f.Sync()
		f.Close()
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize config save: %w", err)
	}

	ClearUserConfigCache()
	return nil
}

// GetTheme returns the current theme, defaulting to "dark"
func GetTheme() string {
	config, err := LoadUserConfig()
	if err != nil || config == nil {
		return "dark"
	}
	switch config.Theme {
	case "dark", "light", "system":
		return config.Theme
	default:
		return "dark"
	}
}

// ResolveTheme resolves a theme name to "dark" or "light". "system" asks
// the OS and falls back to "dark" when detection fails. An empty name uses
// the configured theme.
func ResolveTheme(theme string) string {
	if theme == "" {
		theme = GetTheme()
	}
	switch theme {
	case "light":
		return "light"
	case "system":
		isDark, err := dark.IsDarkMode()
		if err != nil {
			configLog.Debug("dark_mode_detect_failed", slog.String("error", err.Error()))
			return "dark"
		}
		if !isDark {
			return "light"
		}
	}
	return "dark"
}

// GetSheetSettings returns panel defaults with fallbacks applied
func GetSheetSettings() SheetSettings {
	config, err := LoadUserConfig()
	var settings SheetSettings
	if err == nil && config != nil {
		settings = config.Sheet
	}
	if settings.DragThreshold <= 0 {
		settings.DragThreshold = sheet.DefaultDragThreshold
	}
	if settings.CellHeight <= 0 {
		settings.CellHeight = 20
	}
	if settings.Heading == "" {
		settings.Heading = "Sheet"
	}
	return settings
}

// GetStyleSettings returns style settings with the default transition
// duration applied
func GetStyleSettings() StyleSettings {
	config, err := LoadUserConfig()
	var settings StyleSettings
	if err == nil && config != nil {
		settings = config.Style
	}
	if settings.SheetDelay == "" {
		settings.SheetDelay = host.DefaultDelay.String()
	}
	return settings
}

// GetLogSettings returns log settings with defaults applied
func GetLogSettings() LogSettings {
	config, err := LoadUserConfig()
	var settings LogSettings
	if err == nil && config != nil {
		settings = config.Logs
	}
	if settings.DebugLevel == "" {
		settings.DebugLevel = "info"
	}
	if settings.DebugFormat == "" {
		settings.DebugFormat = "json"
	}
	if settings.DebugMaxMB <= 0 {
		settings.DebugMaxMB = 10
	}
	if settings.DebugBackups <= 0 {
		settings.DebugBackups = 5
	}
	if settings.DebugRetentionDays <= 0 {
		settings.DebugRetentionDays = 10
	}
	if settings.RingBufferMB <= 0 {
		settings.RingBufferMB = 1
	}
	if settings.AggregateIntervalS <= 0 {
		settings.AggregateIntervalS = 30
	}
	return settings
}

// exampleConfig is written by CreateExampleConfig.
const exampleConfig = `# sheetdeck user configuration
# Changes to [style] and [sheet] are picked up while the demo runs.

# Color scheme: "dark", "light" or "system"
theme = "dark"

[sheet]
heading = "Sheet"
description = "Drag the handle down to dismiss"
# "content" or "full"
size = "content"
open = true
block_bg = true
drag_close = true
icon_left = "back"
icon_right = "close"
cta_primary = "Apply"
cta_secondary = "Cancel"
# "none", "int" (determinate) or "inf" (indeterminate)
progress_mode = "int"
# Release beyond this distance to dismiss
drag_threshold = 100
# Units per terminal row
cell_height = 20
startup_delay = "16ms"

[style]
# Transition duration, read at every close
sheet_delay = "300ms"

[logs]
debug_level = "info"
debug_format = "json"
debug_max_mb = 10
debug_backups = 5
debug_retention_days = 10
# pprof_addr = "localhost:6060"

# Per-component levels; "gesture" traces drags without the rest
# [logs.components]
# gesture = "debug"
`

// CreateExampleConfig creates an example config file if none exists
func CreateExampleConfig() (string, error) {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return "", fmt.Errorf("failed to write example config: %w", err)
	}
	return configPath, nil
}
