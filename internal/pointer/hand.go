package pointer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/derek750/Beat-Shooter/internal/geom"
)

// Landmarks is the subset of the hand model's output this core consumes:
// the wrist and the base of the middle finger, normalized [0,1] with
// relative depth.
type Landmarks struct {
	Wrist      geom.Point3
	MiddleBase geom.Point3
	Found      bool
}

// LandmarkDetector is the external hand-landmark model. One inference runs
// at a time; the adapter drops frames while the model is busy.
type LandmarkDetector interface {
	Detect(ctx context.Context, frame Frame) (Landmarks, error)
}

// HTTPLandmarkDetector calls a remote landmark model with the same
// image-payload convention as the colour tracker.
type HTTPLandmarkDetector struct {
	URL    string
	Client *http.Client
}

func (d *HTTPLandmarkDetector) Detect(ctx context.Context, frame Frame) (Landmarks, error) {
	body, err := json.Marshal(map[string]string{"image": frame.DataURL})
	if err != nil {
		return Landmarks{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return Landmarks{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Landmarks{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Landmarks{}, fmt.Errorf("landmarks: unexpected status %s", resp.Status)
	}
	var out struct {
		Found      bool      `json:"found"`
		Wrist      []float64 `json:"wrist"`
		MiddleBase []float64 `json:"middle_base"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Landmarks{}, err
	}
	if !out.Found || len(out.Wrist) < 3 || len(out.MiddleBase) < 3 {
		return Landmarks{}, nil
	}
	return Landmarks{
		Wrist:      geom.Point3{X: out.Wrist[0], Y: out.Wrist[1], Z: out.Wrist[2]},
		MiddleBase: geom.Point3{X: out.MiddleBase[0], Y: out.MiddleBase[1], Z: out.MiddleBase[2]},
		Found:      true,
	}, nil
}

// Hand derives the cursor from hand landmarks: wrist position with mirrored
// x, plus orientation angles and a ray-projected crosshair. Inference is
// best-effort; the capture loop pulls the next frame only after the previous
// inference finished, so slow models drop frames instead of queueing them.
type Hand struct {
	Frames   FrameSource
	Detector LandmarkDetector

	// Canvas dimensions for denormalization and the assumed wrist depth for
	// the aim ray.
	Width, Height float64
	AimDepth      float64

	mu      sync.Mutex
	state   State
	hasPos  bool
	meta    Meta
	cancel  context.CancelFunc
	started bool
	stopped bool
	up      bool

	events chan Event
	done   chan struct{}
}

func NewHand(frames FrameSource, detector LandmarkDetector, width, height, aimDepth float64) *Hand {
	return &Hand{
		Frames:   frames,
		Detector: detector,
		Width:    width,
		Height:   height,
		AimDepth: aimDepth,
		events:   make(chan Event),
		done:     make(chan struct{}),
	}
}

func (h *Hand) Capabilities() Capabilities {
	return Capabilities{ContinuousPosition: true, Orientation: true}
}

func (h *Hand) Events() <-chan Event { return h.events }

func (h *Hand) Position() (State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state, h.hasPos
}

func (h *Hand) Meta() Meta {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.meta
}

func (h *Hand) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.up
}

// Start verifies the camera before looping. Camera absence blocks entry to
// play; everything after start degrades per tick instead.
func (h *Hand) Start(ctx context.Context) error {
	if _, err := h.Frames.Grab(ctx); err != nil {
		return fmt.Errorf("hand: camera unavailable: %w", err)
	}
	ctx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.cancel = cancel
	h.started = true
	h.up = true
	h.mu.Unlock()
	go h.loop(ctx)
	return nil
}

func (h *Hand) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	started := h.started
	if h.cancel != nil {
		h.cancel()
	}
	h.up = false
	h.mu.Unlock()

	if started {
		<-h.done
	}
	if err := h.Frames.Close(); err != nil {
		log.Printf("hand: closing camera: %v", err)
	}
}

func (h *Hand) loop(ctx context.Context) {
	defer close(h.done)
	for ctx.Err() == nil {
		frame, err := h.Frames.Grab(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("hand: grab failed: %v", err)
			h.clear()
			continue
		}
		marks, err := h.Detector.Detect(ctx, frame)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("hand: inference failed: %v", err)
			h.clear()
			continue
		}
		if !marks.Found {
			h.clear()
			continue
		}
		h.publish(marks)
	}
}

func (h *Hand) publish(marks Landmarks) {
	angles := geom.Orientation(marks.Wrist, marks.MiddleBase)
	cross := geom.ProjectCrosshair(
		geom.Point3{X: marks.Wrist.X, Y: marks.Wrist.Y, Z: h.AimDepth},
		angles.Rotation, angles.Tilt, 0,
	)
	clamped := geom.ClampToCanvas(cross, h.Width, h.Height)

	h.mu.Lock()
	// The display is mirrored, so x flips on denormalization.
	h.state = State{X: (1 - marks.Wrist.X) * h.Width, Y: marks.Wrist.Y * h.Height}
	h.hasPos = true
	h.meta = Meta{
		Angles:       angles,
		HasAngles:    true,
		Crosshair:    State{X: clamped.X, Y: clamped.Y},
		HasCrosshair: true,
	}
	h.mu.Unlock()
}

func (h *Hand) clear() {
	h.mu.Lock()
	h.hasPos = false
	h.meta = Meta{}
	h.mu.Unlock()
}
