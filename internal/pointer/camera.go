package pointer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	"io"
	"net/http"
)

// Frame is one captured camera image, already JPEG-encoded as a data URL
// the way the tracking services expect it.
type Frame struct {
	Width, Height int
	DataURL       string
}

// FrameSource supplies camera frames. The camera itself is an external
// collaborator; this core only pulls stills from it.
type FrameSource interface {
	Grab(ctx context.Context) (Frame, error)
	Close() error
}

// HTTPFrameSource pulls JPEG stills from a camera endpoint (an IP camera or
// a local capture bridge serving single frames).
type HTTPFrameSource struct {
	URL    string
	Client *http.Client
}

func (s *HTTPFrameSource) Grab(ctx context.Context) (Frame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return Frame{}, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Frame{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Frame{}, fmt.Errorf("camera: unexpected status %s", resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Frame{}, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Frame{}, fmt.Errorf("camera: decode frame: %w", err)
	}
	return Frame{
		Width:   cfg.Width,
		Height:  cfg.Height,
		DataURL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw),
	}, nil
}

func (s *HTTPFrameSource) Close() error { return nil }
