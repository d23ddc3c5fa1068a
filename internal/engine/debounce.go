package engine

import (
	"strings"
	"sync"
	"time"
)

// DefaultDebounceDelay bounds the suggestion rate against a bursty
// per-keystroke/partial-transcript stream.
const DefaultDebounceDelay = 300 * time.Millisecond

// DebouncedFetcher serializes suggestion fetches for a stream of partial
// inputs: a new input cancels the pending timer before scheduling its own,
// so at most one fetch is ever in flight. Inputs shorter than three
// characters or identical to the previous input are skipped without
// scheduling work.
type DebouncedFetcher struct {
	mu        sync.Mutex
	timer     *time.Timer
	delay     time.Duration
	lastInput string
	fetch     func(partial string)
}

// NewDebouncedFetcher wraps fetch in cancel-and-replace debounce
// semantics. A non-positive delay falls back to DefaultDebounceDelay.
func NewDebouncedFetcher(delay time.Duration, fetch func(partial string)) *DebouncedFetcher {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &DebouncedFetcher{delay: delay, fetch: fetch}
}

// Trigger schedules a fetch for the given partial input after the debounce
// delay, cancelling any pending fetch. Returns whether a fetch was
// scheduled.
func (d *DebouncedFetcher) Trigger(partial string) bool {
	trimmed := strings.TrimSpace(partial)

	d.mu.Lock()
	defer d.mu.Unlock()

	if len([]rune(trimmed)) < minPartialLength || trimmed == d.lastInput {
		return false
	}
	d.lastInput = trimmed

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.fetch(trimmed)
	})

	return true
}

// Stop cancels any pending fetch. A superseded or stopped fetch has no
// side effects.
func (d *DebouncedFetcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
