package pointer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// trackResponse is the colour tracking service's answer for one frame.
// Coordinates are pixels in the source image's resolution.
type trackResponse struct {
	Found          bool      `json:"found"`
	Center         []float64 `json:"center"`
	BBox           []float64 `json:"bbox"`
	ProjectedPoint []float64 `json:"projected_point"`
	RotationAngle  *float64  `json:"rotation_angle"`
}

// Color polls the remote colour-blob tracking endpoint on a fixed period.
// Requests are self-throttled: a new one is never issued before the previous
// returned. A failed or empty tick clears the position; it is never sticky.
type Color struct {
	BaseURL  string
	Client   *http.Client
	Frames   FrameSource
	Interval time.Duration

	// Canvas dimensions the tracked pixels are scaled to.
	Width, Height float64

	mu      sync.Mutex
	state   State
	hasPos  bool
	meta    Meta
	cancel  context.CancelFunc
	stopped bool
	started bool

	events chan Event
	done   chan struct{}
	up     bool
}

func NewColor(baseURL string, client *http.Client, frames FrameSource, interval time.Duration, width, height float64) *Color {
	return &Color{
		BaseURL:  baseURL,
		Client:   client,
		Frames:   frames,
		Interval: interval,
		Width:    width,
		Height:   height,
		events:   make(chan Event),
		done:     make(chan struct{}),
	}
}

func (c *Color) Capabilities() Capabilities {
	return Capabilities{ContinuousPosition: true, Orientation: true}
}

func (c *Color) Events() <-chan Event { return c.events }

func (c *Color) Position() (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.hasPos
}

func (c *Color) Meta() Meta {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta
}

func (c *Color) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

// Start verifies the camera is reachable, then launches the polling loop.
// An unreachable camera is a blocking error, matching the permission-error
// policy.
func (c *Color) Start(ctx context.Context) error {
	if _, err := c.Frames.Grab(ctx); err != nil {
		return fmt.Errorf("color: camera unavailable: %w", err)
	}
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.started = true
	c.up = true
	c.mu.Unlock()
	go c.poll(ctx)
	return nil
}

func (c *Color) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	started := c.started
	if c.cancel != nil {
		c.cancel()
	}
	c.up = false
	c.mu.Unlock()

	if started {
		<-c.done
	}
	if err := c.Frames.Close(); err != nil {
		log.Printf("color: closing camera: %v", err)
	}
}

func (c *Color) poll(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// The blocking tick body throttles us: ticks that fire while a
			// request is in flight are dropped by the ticker, not queued.
			c.tick(ctx)
		}
	}
}

func (c *Color) tick(ctx context.Context) {
	frame, err := c.Frames.Grab(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("color: grab failed: %v", err)
		}
		c.clear()
		return
	}
	resp, err := c.track(ctx, frame)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("color: track failed: %v", err)
		}
		c.clear()
		return
	}
	if !resp.Found || len(resp.Center) < 2 {
		c.clear()
		return
	}

	sx := c.Width / float64(frame.Width)
	sy := c.Height / float64(frame.Height)

	meta := Meta{}
	if len(resp.BBox) >= 4 {
		meta.BBox = BBox{
			X: resp.BBox[0] * sx, Y: resp.BBox[1] * sy,
			W: resp.BBox[2] * sx, H: resp.BBox[3] * sy,
			Valid: true,
		}
	}
	if resp.RotationAngle != nil {
		meta.Angles.Rotation = *resp.RotationAngle
		meta.HasAngles = true
	}
	if len(resp.ProjectedPoint) >= 2 {
		meta.Crosshair = State{X: resp.ProjectedPoint[0] * sx, Y: resp.ProjectedPoint[1] * sy}
		meta.HasCrosshair = true
	}

	c.mu.Lock()
	c.state = State{X: resp.Center[0] * sx, Y: resp.Center[1] * sy}
	c.hasPos = true
	c.meta = meta
	c.mu.Unlock()
}

func (c *Color) clear() {
	c.mu.Lock()
	c.hasPos = false
	c.meta = Meta{}
	c.mu.Unlock()
}

func (c *Color) track(ctx context.Context, frame Frame) (trackResponse, error) {
	body, err := json.Marshal(map[string]string{"image": frame.DataURL})
	if err != nil {
		return trackResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/cv/track", bytes.NewReader(body))
	if err != nil {
		return trackResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return trackResponse{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return trackResponse{}, fmt.Errorf("cv/track: unexpected status %s", resp.Status)
	}
	var out trackResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return trackResponse{}, err
	}
	return out, nil
}
