package pointer

import "time"

// debouncer suppresses duplicate presses of the same button inside a
// refractory window. Physical buttons bounce; a bounce must not award score
// twice.
type debouncer struct {
	window time.Duration
	last   map[int]time.Time
	now    func() time.Time
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{
		window: window,
		last:   make(map[int]time.Time),
		now:    time.Now,
	}
}

// accept reports whether a press of button should be kept, and records it
// if so. Releases are never debounced; callers only route presses here.
func (d *debouncer) accept(button int) bool {
	now := d.now()
	if prev, ok := d.last[button]; ok && now.Sub(prev) < d.window {
		return false
	}
	d.last[button] = now
	return true
}
