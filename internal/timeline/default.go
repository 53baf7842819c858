package timeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/derek750/Beat-Shooter/internal/game"
)

// DefaultBuilder runs the two-step setup pipeline against the remote beat
// and tile services. The calls are sequential: the tile count depends on the
// beat timeline.
type DefaultBuilder struct {
	Client  *http.Client
	BaseURL string

	// Layout request parameters. Width/Height are carried onto the schedule
	// so later denormalization never drifts with canvas resizes.
	Width, Height float64
	TileWindow    int
	Spacing       float64

	// Display-time spacing of the synthesized fallback schedule.
	FallbackSpacing time.Duration

	// Per-request timeout and retry policy for both setup calls.
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

type beatsRequest struct {
	AudioURL string `json:"audio_url"`
}

type beatsResponse struct {
	Timestamps []float64 `json:"timestamps"`
	Types      []string  `json:"types"`
	AllPoints  []struct {
		Energy float64 `json:"energy"`
	} `json:"all_points"`
	Duration float64 `json:"duration"`
}

type tilesRequest struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Count      int     `json:"count"`
	TileWindow int     `json:"tile_window"`
	Radius     float64 `json:"radius"`
}

type tilesResponse struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// Build fetches the beat timeline and a tile layout and normalizes them into
// one schedule. Every failure path lands on a usable, possibly degenerate,
// schedule.
func (b *DefaultBuilder) Build(ctx context.Context, audioURL string) *game.Schedule {
	var beats beatsResponse
	if err := b.post(ctx, "/beats/create_beats", beatsRequest{AudioURL: audioURL}, &beats); err != nil {
		log.Printf("timeline: beat analysis unavailable, using fallback: %v", err)
		beats = beatsResponse{}
	}

	count := len(beats.Timestamps)
	if count < 1 {
		count = 1
	}
	var tiles tilesResponse
	if err := b.post(ctx, "/tiles/generate", tilesRequest{
		Width:      b.Width,
		Height:     b.Height,
		Count:      count,
		TileWindow: b.TileWindow,
		Radius:     b.Spacing,
	}, &tiles); err != nil {
		log.Printf("timeline: tile layout unavailable, using fallback: %v", err)
		tiles = tilesResponse{}
	}

	return b.assemble(beats, tiles)
}

// assemble normalizes the two responses into an index-aligned schedule,
// synthesizing whatever either service failed to provide.
func (b *DefaultBuilder) assemble(beats beatsResponse, tiles tilesResponse) *game.Schedule {
	n := len(tiles.X)
	if len(tiles.Y) < n {
		n = len(tiles.Y)
	}
	if n == 0 {
		n = len(beats.Timestamps)
		if n < 1 {
			n = 1
		}
		tiles = fallbackLayout(n, b.Width, b.Height)
	}

	timestamps := beats.Timestamps
	if len(timestamps) == 0 {
		spacing := b.FallbackSpacing.Seconds()
		timestamps = make([]float64, n)
		for i := range timestamps {
			timestamps[i] = float64(i) * spacing
		}
	}
	if len(timestamps) < n {
		n = len(timestamps)
	}

	energies := make([]float64, len(beats.AllPoints))
	for i, p := range beats.AllPoints {
		energies[i] = p.Energy
	}
	norm := game.NormalizeEnergies(energies)

	s := &game.Schedule{
		Tiles:    make([]game.ScheduledTile, n),
		Width:    b.Width,
		Height:   b.Height,
		Duration: beats.Duration,
	}
	for i := 0; i < n; i++ {
		kind := game.BeatLow
		if i < len(beats.Types) && game.BeatType(beats.Types[i]) == game.BeatHigh {
			kind = game.BeatHigh
		}
		en := 0.5
		if i < len(norm) {
			en = norm[i]
		}
		s.Tiles[i] = game.ScheduledTile{
			Tile: game.Tile{
				X: tiles.X[i] / b.Width,
				Y: tiles.Y[i] / b.Height,
			},
			DisplayAt:  timestamps[i],
			Type:       kind,
			EnergyNorm: en,
		}
	}
	return s
}

// fallbackLayout spreads n tiles along a gentle diagonal wave so a session
// without the layout service still has distinct, non-overlapping targets.
func fallbackLayout(n int, width, height float64) tilesResponse {
	out := tilesResponse{X: make([]float64, n), Y: make([]float64, n)}
	for i := 0; i < n; i++ {
		f := (float64(i) + 0.5) / float64(n)
		out.X[i] = f * width
		out.Y[i] = (0.5 + 0.35*math.Sin(2*math.Pi*f)) * height
	}
	return out
}

func (b *DefaultBuilder) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	attempts := b.Retries + 1
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 0; ; attempt++ {
		err = b.postOnce(ctx, path, body, out)
		if err == nil {
			return nil
		}
		if attempt+1 >= attempts || ctx.Err() != nil {
			return err
		}
		log.Printf("timeline: %s attempt %d failed, retrying: %v", path, attempt+1, err)
		select {
		case <-time.After(b.Backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (b *DefaultBuilder) postOnce(ctx context.Context, path string, body []byte, out any) error {
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: unexpected status %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
