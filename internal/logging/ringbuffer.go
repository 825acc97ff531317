package logging

import (
	"bytes"
	"os"
	"sync"
)

// RingBuffer keeps the most recent log output in memory for crash dumps.
// It stores whole lines and evicts the oldest ones when over its limit, so
// a dump never begins in the middle of a record.
type RingBuffer struct {
	mu      sync.Mutex
	lines   [][]byte
	size    int
	limit   int
	partial []byte
}

// NewRingBuffer creates a ring buffer holding up to limit bytes.
func NewRingBuffer(limit int) *RingBuffer {
	if limit <= 0 {
		limit = 1024 * 1024
	}
	return &RingBuffer{limit: limit}
}

// Write implements io.Writer. A trailing fragment without a newline is held
// back until the rest of its line arrives.
func (rb *RingBuffer) Write(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	data := p
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			rb.partial = append(rb.partial, data...)
			break
		}
		line := append(rb.partial, data[:i+1]...)
		rb.partial = nil
		rb.push(line)
		data = data[i+1:]
	}
	return len(p), nil
}

func (rb *RingBuffer) push(line []byte) {
	// A single oversized record keeps its tail
	if len(line) > rb.limit {
		line = line[len(line)-rb.limit:]
	}
	rb.lines = append(rb.lines, line)
	rb.size += len(line)
	for rb.size > rb.limit {
		rb.size -= len(rb.lines[0])
		rb.lines[0] = nil
		rb.lines = rb.lines[1:]
	}
}

// Lines returns how many complete lines are held.
func (rb *RingBuffer) Lines() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return len(rb.lines)
}

// Bytes returns the held lines, oldest first, followed by any unfinished
// line.
func (rb *RingBuffer) Bytes() []byte {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	out := make([]byte, 0, rb.size+len(rb.partial))
	for _, line := range rb.lines {
		out = append(out, line...)
	}
	return append(out, rb.partial...)
}

// DumpToFile writes the buffer contents to path.
func (rb *RingBuffer) DumpToFile(path string) error {
	return os.WriteFile(path, rb.Bytes(), 0o600)
}
