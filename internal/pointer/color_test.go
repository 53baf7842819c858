package pointer

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// stillFrames hands out a fixed fake frame without any camera behind it.
type stillFrames struct {
	w, h   int
	err    error
	closed atomic.Bool
}

func (s *stillFrames) Grab(ctx context.Context) (Frame, error) {
	if s.err != nil {
		return Frame{}, s.err
	}
	return Frame{Width: s.w, Height: s.h, DataURL: "data:image/jpeg;base64,x"}, nil
}

func (s *stillFrames) Close() error {
	s.closed.Store(true)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestColorScalesToCanvas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		angle := -45.0
		json.NewEncoder(w).Encode(map[string]any{
			"found":           true,
			"center":          []float64{320, 240},
			"bbox":            []float64{300, 220, 40, 40},
			"projected_point": []float64{160, 120},
			"rotation_angle":  angle,
		})
	}))
	defer srv.Close()

	// Source frames are 640x480, canvas is 1280x720.
	c := NewColor(srv.URL, srv.Client(), &stillFrames{w: 640, h: 480}, 5*time.Millisecond, 1280, 720)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer c.Stop()

	waitFor(t, func() bool { _, ok := c.Position(); return ok })
	pos, _ := c.Position()
	if math.Abs(pos.X-640) > 1e-9 || math.Abs(pos.Y-360) > 1e-9 {
		t.Errorf("position = %+v, want (640, 360)", pos)
	}
	meta := c.Meta()
	if !meta.BBox.Valid || math.Abs(meta.BBox.X-600) > 1e-9 || math.Abs(meta.BBox.H-60) > 1e-9 {
		t.Errorf("bbox = %+v", meta.BBox)
	}
	if !meta.HasAngles || meta.Angles.Rotation != -45 {
		t.Errorf("rotation = %+v", meta.Angles)
	}
	if !meta.HasCrosshair || math.Abs(meta.Crosshair.X-320) > 1e-9 {
		t.Errorf("crosshair = %+v", meta.Crosshair)
	}
}

func TestColorNotFoundClearsPosition(t *testing.T) {
	var found atomic.Bool
	found.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if found.Load() {
			json.NewEncoder(w).Encode(map[string]any{"found": true, "center": []float64{10, 10}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"found": false})
	}))
	defer srv.Close()

	c := NewColor(srv.URL, srv.Client(), &stillFrames{w: 100, h: 100}, 5*time.Millisecond, 100, 100)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer c.Stop()

	waitFor(t, func() bool { _, ok := c.Position(); return ok })
	found.Store(false)
	waitFor(t, func() bool { _, ok := c.Position(); return !ok })
}

func TestColorEndpointErrorClearsPosition(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"found": true, "center": []float64{5, 5}})
	}))
	defer srv.Close()

	c := NewColor(srv.URL, srv.Client(), &stillFrames{w: 100, h: 100}, 5*time.Millisecond, 100, 100)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer c.Stop()

	waitFor(t, func() bool { _, ok := c.Position(); return ok })
	fail.Store(true)
	waitFor(t, func() bool { _, ok := c.Position(); return !ok })
}

func TestColorCameraUnavailableBlocksStart(t *testing.T) {
	c := NewColor("http://unused", nil, &stillFrames{err: errors.New("permission denied")}, time.Millisecond, 100, 100)
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("camera failure must surface as a start error")
	}
}

func TestColorStopIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"found": false})
	}))
	defer srv.Close()

	frames := &stillFrames{w: 100, h: 100}
	c := NewColor(srv.URL, srv.Client(), frames, 5*time.Millisecond, 100, 100)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Stop()
	c.Stop()
	if !frames.closed.Load() {
		t.Error("camera must be released on stop")
	}
}
