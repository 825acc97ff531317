package host

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DelayProperty is the custom property holding the sheet transition time.
const DelayProperty = "--sheet-delay"

// DefaultDelay applies when no style sets DelayProperty.
const DefaultDelay = 300 * time.Millisecond

var digitRun = regexp.MustCompile(`\d+`)

// StyleSheet holds custom properties at root level and per element.
// Element values shadow root values. Values can change at any time, so
// callers read them at the moment they need them.
type StyleSheet struct {
	root     map[string]string
	elements map[string]map[string]string
}

// NewStyleSheet returns an empty style sheet.
func NewStyleSheet() *StyleSheet {
	return &StyleSheet{
		root:     make(map[string]string),
		elements: make(map[string]map[string]string),
	}
}

// Set assigns a root-level property. An empty value deletes it.
func (s *StyleSheet) Set(name, value string) {
	if value == "" {
		delete(s.root, name)
		return
	}
	s.root[name] = value
}

// SetElement assigns a property on one element. An empty value deletes it.
func (s *StyleSheet) SetElement(element, name, value string) {
	props := s.elements[element]
	if value == "" {
		if props != nil {
			delete(props, name)
		}
		return
	}
	if props == nil {
		props = make(map[string]string)
		s.elements[element] = props
	}
	props[name] = value
}

// ClearElement drops every property set on element.
func (s *StyleSheet) ClearElement(element string) {
	delete(s.elements, element)
}

// Property returns the computed value of name for element.
func (s *StyleSheet) Property(element, name string) (string, bool) {
	if props, ok := s.elements[element]; ok {
		if v, ok := props[name]; ok {
			return v, true
		}
	}
	v, ok := s.root[name]
	return v, ok
}

// Duration returns the computed duration of name for element, or fallback
// when the property is missing or unparseable.
func (s *StyleSheet) Duration(element, name string, fallback time.Duration) time.Duration {
	v, ok := s.Property(element, name)
	if !ok {
		return fallback
	}
	d, ok := ParseDuration(v)
	if !ok {
		return fallback
	}
	return d
}

// maxMillis is the largest millisecond count a time.Duration holds.
const maxMillis = math.MaxInt64 / 1_000_000

// ParseDuration accepts Go durations ("300ms", "0.3s"), bare numbers as
// milliseconds, and otherwise takes the first run of digits as
// milliseconds, so "300ms ease-out" still yields 300ms.
func ParseDuration(v string) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(v); err == nil {
		if d < 0 {
			return 0, false
		}
		return d, true
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		if math.IsNaN(f) || f < 0 || f > maxMillis {
			return 0, false
		}
		return time.Duration(f * float64(time.Millisecond)), true
	}
	m := digitRun.FindString(v)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil || n > maxMillis {
		return 0, false
	}
	return time.Duration(n) * time.Millisecond, true
}
