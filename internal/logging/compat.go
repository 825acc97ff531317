package logging

import (
	"bytes"
	"log/slog"
	"strings"
)

// BridgeWriter wraps slog as an io.Writer so stdlib log output (from
// dependencies or log.Printf) lands in the structured log. A leading
// "[CATEGORY] " prefix becomes the component field.
type BridgeWriter struct {
	component string
}

// NewBridgeWriter creates a writer that forwards writes to slog.
// The defaultComponent is used when no [CATEGORY] prefix is found.
func NewBridgeWriter(defaultComponent string) *BridgeWriter {
	return &BridgeWriter{component: defaultComponent}
}

// Write implements io.Writer. Each write is treated as one log line.
func (bw *BridgeWriter) Write(p []byte) (int, error) {
	n := len(p)
	msg := string(bytes.TrimSpace(p))
	if msg == "" {
		return n, nil
	}

	// slog adds its own timestamp
	msg = stripLogTimestamp(msg)

	component := bw.component
	if strings.HasPrefix(msg, "[") {
		if idx := strings.Index(msg, "] "); idx > 0 {
			component = strings.ToLower(msg[1:idx])
			msg = msg[idx+2:]
		}
	}

	Logger().Info(msg, slog.String("component", canonicalComponent(component)))
	return n, nil
}

// stripLogTimestamp removes the time prefix added by log.Ltime, with or
// without log.Lmicroseconds.
func stripLogTimestamp(s string) string {
	if len(s) > 16 && s[2] == ':' && s[5] == ':' && s[8] == '.' && s[15] == ' ' {
		return s[16:]
	}
	if len(s) > 9 && s[2] == ':' && s[5] == ':' && s[8] == ' ' {
		return s[9:]
	}
	return s
}

// canonicalComponent maps known log prefixes to canonical component names.
func canonicalComponent(cat string) string {
	switch cat {
	case "sheet", "panel":
		return CompSheet
	case "lifecycle", "open", "close":
		return CompLifecycle
	case "gesture", "drag", "touch":
		return CompGesture
	case "mirror", "attr", "facet":
		return CompMirror
	case "host", "scroll":
		return CompHost
	case "ui", "tea", "render":
		return CompUI
	case "config", "style":
		return CompConfig
	case "storage", "statedb", "sqlite":
		return CompStorage
	default:
		return cat
	}
}
