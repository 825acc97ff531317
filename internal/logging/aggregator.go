package logging

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
	"time"
)

type aggregateKey struct {
	component string
	event     string
}

// burst is everything recorded for one key within a window.
type burst struct {
	count       int64
	first, last time.Time
	fields      []slog.Attr
	peaks       map[string]int64
}

// Aggregator folds high-frequency events, such as drag moves, into one
// summary record per event and window. Integer fields are reported both as
// their last value and as the window peak.
type Aggregator struct {
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	bursts map[aggregateKey]*burst

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewAggregator creates an aggregator that flushes every intervalSecs
// seconds. A nil logger discards everything recorded.
func NewAggregator(logger *slog.Logger, intervalSecs int) *Aggregator {
	if intervalSecs <= 0 {
		intervalSecs = 30
	}
	return &Aggregator{
		logger:   logger,
		interval: time.Duration(intervalSecs) * time.Second,
		now:      time.Now,
		bursts:   make(map[aggregateKey]*burst),
		stop:     make(chan struct{}),
	}
}

// Start runs the periodic flush in the background.
func (a *Aggregator) Start() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.flush()
			case <-a.stop:
				return
			}
		}
	}()
}

// Stop ends the background flush and writes what is pending. Later calls
// do nothing.
func (a *Aggregator) Stop() {
	a.stopOnce.Do(func() {
		close(a.stop)
		a.wg.Wait()
		a.flush()
	})
}

// Record counts one occurrence of event. The most recent non-empty fields
// are kept for the summary.
func (a *Aggregator) Record(component, event string, fields ...slog.Attr) {
	now := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()

	key := aggregateKey{component: component, event: event}
	b, ok := a.bursts[key]
	if !ok {
		b = &burst{first: now, peaks: make(map[string]int64)}
		a.bursts[key] = b
	}
	b.count++
	b.last = now
	if len(fields) > 0 {
		b.fields = fields
	}
	for _, f := range fields {
		if f.Value.Kind() != slog.KindInt64 {
			continue
		}
		v := f.Value.Int64()
		if peak, seen := b.peaks[f.Key]; !seen || v > peak {
			b.peaks[f.Key] = v
		}
	}
}

// Pending returns how many times event was recorded since the last flush.
func (a *Aggregator) Pending(component, event string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if b, ok := a.bursts[aggregateKey{component: component, event: event}]; ok {
		return b.count
	}
	return 0
}

func (a *Aggregator) flush() {
	a.mu.Lock()
	bursts := a.bursts
	a.bursts = make(map[aggregateKey]*burst)
	a.mu.Unlock()

	if a.logger == nil || len(bursts) == 0 {
		return
	}

	keys := make([]aggregateKey, 0, len(bursts))
	for k := range bursts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(x, y aggregateKey) int {
		return cmp.Or(cmp.Compare(x.component, y.component), cmp.Compare(x.event, y.event))
	})

	for _, k := range keys {
		b := bursts[k]
		span := b.last.Sub(b.first)
		attrs := []any{
			slog.String("component", k.component),
			slog.String("event", k.event),
			slog.Int64("count", b.count),
			slog.Int64("span_ms", span.Milliseconds()),
		}
		if span > 0 {
			attrs = append(attrs, slog.Float64("per_second", float64(b.count)/span.Seconds()))
		}
		for _, f := range b.fields {
			attrs = append(attrs, f)
		}
		peakKeys := make([]string, 0, len(b.peaks))
		for name := range b.peaks {
			peakKeys = append(peakKeys, name)
		}
		slices.Sort(peakKeys)
		for _, name := range peakKeys {
			attrs = append(attrs, slog.Int64("max_"+name, b.peaks[name]))
		}
		a.logger.Info("event_summary", attrs...)
	}
}
