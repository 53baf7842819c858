package pointer

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/derek750/Beat-Shooter/internal/geom"
)

// scriptedDetector returns a fixed landmark pair, switchable to "no hand".
type scriptedDetector struct {
	marks Landmarks
	found atomic.Bool
}

func (d *scriptedDetector) Detect(ctx context.Context, frame Frame) (Landmarks, error) {
	if !d.found.Load() {
		return Landmarks{}, nil
	}
	return d.marks, nil
}

func TestHandMirrorsWrist(t *testing.T) {
	det := &scriptedDetector{marks: Landmarks{
		Wrist:      geom.Point3{X: 0.25, Y: 0.5, Z: 0},
		MiddleBase: geom.Point3{X: 0.25, Y: 0.3, Z: -0.1},
		Found:      true,
	}}
	det.found.Store(true)

	h := NewHand(&stillFrames{w: 640, h: 480}, det, 1000, 500, 0.5)
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer h.Stop()

	waitFor(t, func() bool { _, ok := h.Position(); return ok })
	pos, _ := h.Position()
	if math.Abs(pos.X-750) > 1e-9 {
		t.Errorf("x = %v, want 750 (mirrored 0.25 on a 1000px canvas)", pos.X)
	}
	if math.Abs(pos.Y-250) > 1e-9 {
		t.Errorf("y = %v, want 250", pos.Y)
	}
	meta := h.Meta()
	if !meta.HasAngles || !meta.HasCrosshair {
		t.Errorf("hand meta incomplete: %+v", meta)
	}
	if meta.Crosshair.X < 0 || meta.Crosshair.X > 1000 || meta.Crosshair.Y < 0 || meta.Crosshair.Y > 500 {
		t.Errorf("crosshair outside the canvas: %+v", meta.Crosshair)
	}
}

func TestHandLostClearsPosition(t *testing.T) {
	det := &scriptedDetector{marks: Landmarks{
		Wrist:      geom.Point3{X: 0.5, Y: 0.5},
		MiddleBase: geom.Point3{X: 0.5, Y: 0.4, Z: -0.2},
		Found:      true,
	}}
	det.found.Store(true)

	h := NewHand(&stillFrames{w: 100, h: 100}, det, 100, 100, 0.5)
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer h.Stop()

	waitFor(t, func() bool { _, ok := h.Position(); return ok })
	det.found.Store(false)
	waitFor(t, func() bool { _, ok := h.Position(); return !ok })
}

func TestHandCameraUnavailableBlocksStart(t *testing.T) {
	h := NewHand(&stillFrames{err: errors.New("permission denied")}, &scriptedDetector{}, 100, 100, 0.5)
	if err := h.Start(context.Background()); err == nil {
		t.Fatal("camera failure must surface as a start error")
	}
}

func TestHandStopIdempotent(t *testing.T) {
	det := &scriptedDetector{}
	frames := &stillFrames{w: 100, h: 100}
	h := NewHand(frames, det, 100, 100, 0.5)
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.Stop()
	h.Stop()
	if !frames.closed.Load() {
		t.Error("camera must be released on stop")
	}
}
