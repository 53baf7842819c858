package session

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// AudioPlayer is the session's playback handle. Stop is idempotent.
type AudioPlayer interface {
	Play() error
	Stop()
}

// speakerInit guards the one-time speaker setup; beep owns a single output
// device for the whole process.
var speakerInit sync.Once

type beepPlayer struct {
	streamer beep.StreamSeekCloser
	format   beep.Format

	mu      sync.Mutex
	stopped bool
}

// NewAudio opens an mp3 from a local path or an HTTP URL. Remote audio is
// read fully before decoding so playback never stalls on the network.
func NewAudio(ref string) (AudioPlayer, error) {
	rc, err := openAudio(ref)
	if err != nil {
		return nil, err
	}
	streamer, format, err := mp3.Decode(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("decode %q: %w", ref, err)
	}
	return &beepPlayer{streamer: streamer, format: format}, nil
}

func openAudio(ref string) (io.ReadCloser, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		resp, err := http.Get(ref)
		if err != nil {
			return nil, fmt.Errorf("fetch audio: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch audio: unexpected status %s", resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("fetch audio: %w", err)
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return os.Open(ref)
}

func (p *beepPlayer) Play() error {
	var initErr error
	speakerInit.Do(func() {
		initErr = speaker.Init(p.format.SampleRate, p.format.SampleRate.N(time.Second/10))
	})
	if initErr != nil {
		return fmt.Errorf("speaker init: %w", initErr)
	}
	speaker.Play(p.streamer)
	return nil
}

func (p *beepPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	speaker.Clear()
	p.streamer.Close()
}
