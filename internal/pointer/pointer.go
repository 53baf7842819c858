// Package pointer holds the three cursor sources and the contract they share.
// Exactly one source is authoritative per session; the program selects it at
// startup and never merges outputs.
package pointer

import (
	"context"
	"time"

	"github.com/derek750/Beat-Shooter/internal/geom"
)

// State is a cursor position in canvas pixel space.
type State struct {
	X, Y float64
}

// EventKind is a discrete controller event class.
type EventKind string

const (
	Press   EventKind = "press"
	Release EventKind = "release"
)

// Event is a discrete input event from a source.
type Event struct {
	Kind   EventKind
	Button int
	At     time.Time
}

// BBox is an optional tracked bounding box in canvas pixels.
type BBox struct {
	X, Y, W, H float64
	Valid      bool
}

// Meta is the optional per-position payload of a source.
type Meta struct {
	Angles       geom.Angles
	HasAngles    bool
	Crosshair    State
	HasCrosshair bool
	BBox         BBox
}

// Capabilities documents what a source produces, so the program can adapt
// HUD and scoring per variant instead of assuming one.
type Capabilities struct {
	ContinuousPosition bool
	Orientation        bool
	DiscreteEvents     bool
}

// Source is a pointer adapter. Position returns false whenever the
// underlying pipeline is unavailable; stale positions are never republished.
// Stop must be idempotent and release everything the source acquired.
type Source interface {
	Start(ctx context.Context) error
	Stop()
	Position() (State, bool)
	Meta() Meta
	Events() <-chan Event
	Connected() bool
	Capabilities() Capabilities
}
