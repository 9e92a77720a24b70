// Package transcript supplies the engine with the session's running
// transcript. The engine only ever sees the Provider interface; adapters
// here cover a plain function, an appendable feed, and a live websocket
// captioning stream.
package transcript

import (
	"strings"
	"sync"
)

// Provider returns the current full transcript. Implementations must be
// synchronous, idempotent, and side-effect-free from the caller's
// perspective.
type Provider interface {
	Transcript() string
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func() string

func (f ProviderFunc) Transcript() string { return f() }

// Feed is a concurrency-safe transcript accumulator. Segments are joined
// with single spaces in arrival order.
type Feed struct {
	mu       sync.RWMutex
	segments []string
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{}
}

// Append adds a transcript segment. Empty and whitespace-only segments are
// ignored.
func (f *Feed) Append(segment string) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return
	}
	f.mu.Lock()
	f.segments = append(f.segments, segment)
	f.mu.Unlock()
}

// Transcript returns the full transcript so far.
func (f *Feed) Transcript() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return strings.Join(f.segments, " ")
}

// LastSegment returns the most recently appended segment, or "".
func (f *Feed) LastSegment() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.segments) == 0 {
		return ""
	}
	return f.segments[len(f.segments)-1]
}
