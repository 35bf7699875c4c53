package render

import (
	"fmt"
	"log"
	"sync"
	"time"
)

const (
	// rapidWindow and rapidCount classify a failure burst as a likely
	// render loop rather than an isolated fault.
	rapidWindow = 2 * time.Second
	rapidCount  = 5

	initialBackoff = 250 * time.Millisecond
	maxBackoff     = 8 * time.Second
)

// Boundary contains panics raised while drawing scene nodes so a bad node
// cannot take down the process. Isolated faults reset immediately; a burst
// of failures inside rapidWindow is treated as a likely infinite update loop
// and recovery is delayed with a doubling backoff. Reset clears the backoff
// manually.
type Boundary struct {
	mu        sync.Mutex
	failures  []time.Time
	backoff   time.Duration
	suspended bool
	lastErr   error

	// after schedules the delayed recovery; swapped out in tests.
	after func(time.Duration, func()) *time.Timer

	onSuspend func(error)
	onResume  func()
}

// NewBoundary creates a render error boundary. onSuspend fires when drawing
// is suspended after a failure burst; onResume fires when the backoff delay
// elapses or Reset is called. Either callback may be nil.
func NewBoundary(onSuspend func(error), onResume func()) *Boundary {
	return &Boundary{
		backoff:   initialBackoff,
		after:     time.AfterFunc,
		onSuspend: onSuspend,
		onResume:  onResume,
	}
}

// Guard runs draw, converting a panic into a recorded failure. Returns false
// when drawing is currently suspended or the draw panicked.
func (b *Boundary) Guard(draw func()) (ok bool) {
	b.mu.Lock()
	if b.suspended {
		b.mu.Unlock()
		return false
	}
	b.mu.Unlock()

	defer func() {
		if v := recover(); v != nil {
			ok = false
			b.recordFailure(fmt.Errorf("render: %v", v))
		}
	}()
	draw()
	return true
}

func (b *Boundary) recordFailure(err error) {
	b.mu.Lock()
	now := time.Now()
	b.lastErr = err

	cutoff := now.Add(-rapidWindow)
	kept := b.failures[:0]
	for _, t := range b.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.failures = append(kept, now)

	rapid := len(b.failures) >= rapidCount
	var delay time.Duration
	if rapid && !b.suspended {
		b.suspended = true
		delay = b.backoff
		b.backoff *= 2
		if b.backoff > maxBackoff {
			b.backoff = maxBackoff
		}
	}
	onSuspend := b.onSuspend
	b.mu.Unlock()

	if !rapid {
		log.Printf("render error (isolated): %v", err)
		return
	}
	if delay == 0 {
		return // already suspended, burst continues
	}

	log.Printf("render error burst, suspending drawing for %v: %v", delay, err)
	if onSuspend != nil {
		onSuspend(err)
	}
	b.after(delay, b.resume)
}

func (b *Boundary) resume() {
	b.mu.Lock()
	b.suspended = false
	b.failures = nil
	onResume := b.onResume
	b.mu.Unlock()

	log.Printf("render recovery: drawing resumed")
	if onResume != nil {
		onResume()
	}
}

// Reset is the manual recovery action: it lifts a suspension immediately
// and clears the failure history and backoff.
func (b *Boundary) Reset() {
	b.mu.Lock()
	wasSuspended := b.suspended
	b.suspended = false
	b.failures = nil
	b.backoff = initialBackoff
	onResume := b.onResume
	b.mu.Unlock()

	if wasSuspended && onResume != nil {
		onResume()
	}
}

// Suspended reports whether drawing is currently suspended.
func (b *Boundary) Suspended() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.suspended
}

// LastError returns the most recent contained failure, or nil.
func (b *Boundary) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}
