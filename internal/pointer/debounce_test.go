package pointer

import (
	"testing"
	"time"
)

func TestDebounceRefractoryWindow(t *testing.T) {
	now := time.Unix(0, 0)
	d := newDebouncer(80 * time.Millisecond)
	d.now = func() time.Time { return now }

	if !d.accept(0) {
		t.Fatal("first press must be accepted")
	}
	now = now.Add(30 * time.Millisecond)
	if d.accept(0) {
		t.Error("press 30ms after the previous must be discarded")
	}

	d = newDebouncer(80 * time.Millisecond)
	now = time.Unix(0, 0)
	d.now = func() time.Time { return now }
	if !d.accept(0) {
		t.Fatal("first press must be accepted")
	}
	now = now.Add(100 * time.Millisecond)
	if !d.accept(0) {
		t.Error("press 100ms after the previous must be accepted")
	}
}

func TestDebouncePerButton(t *testing.T) {
	now := time.Unix(0, 0)
	d := newDebouncer(80 * time.Millisecond)
	d.now = func() time.Time { return now }

	if !d.accept(0) || !d.accept(1) {
		t.Error("different buttons never debounce each other")
	}
}
