package pointer

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// wsFrame is an inbound message from the controller bridge: either a
// discrete edge or a full button-state snapshot.
type wsFrame struct {
	Type    string `json:"type"`
	Button  int    `json:"button"`
	Buttons []int  `json:"buttons"`
}

// Hardware reads press/release events from the ESP32 bridge over a
// websocket. It keeps the connection alive with periodic idle frames,
// debounces bounced presses, and redials a capped number of times after an
// unexpected close.
type Hardware struct {
	URL       string
	KeepAlive time.Duration
	Redials   int
	Delay     time.Duration

	debounce *debouncer

	mu      sync.Mutex
	conn    *websocket.Conn
	cancel  context.CancelFunc
	started bool
	stopped bool

	connected atomic.Bool
	events    chan Event
	done      chan struct{}
}

// NewHardware builds the controller adapter. The refractory window applies
// per button.
func NewHardware(url string, keepAlive, debounceWindow, redialDelay time.Duration, redials int) *Hardware {
	return &Hardware{
		URL:       url,
		KeepAlive: keepAlive,
		Redials:   redials,
		Delay:     redialDelay,
		debounce:  newDebouncer(debounceWindow),
		events:    make(chan Event, 64),
		done:      make(chan struct{}),
	}
}

func (h *Hardware) Capabilities() Capabilities {
	return Capabilities{DiscreteEvents: true}
}

// Position is always absent; the controller carries no cursor.
func (h *Hardware) Position() (State, bool) { return State{}, false }

func (h *Hardware) Meta() Meta { return Meta{} }

func (h *Hardware) Events() <-chan Event { return h.events }

func (h *Hardware) Connected() bool { return h.connected.Load() }

// Start dials the bridge and launches the reader and keep-alive loops. A
// failed initial dial is not fatal: the adapter runs disconnected and goes
// through the same redial policy as a dropped connection, surfacing the
// channel state through Connected.
func (h *Hardware) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	h.started = true
	h.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, h.URL, nil)
	if err != nil {
		log.Printf("hardware: dial failed, starting disconnected: %v", err)
	} else {
		h.mu.Lock()
		h.conn = conn
		h.mu.Unlock()
		h.connected.Store(true)
	}

	go h.run(ctx)
	go h.keepAlive(ctx)
	return nil
}

// Stop closes the channel and the socket. Safe to call more than once and
// concurrently with a failing reader.
func (h *Hardware) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	if h.cancel != nil {
		h.cancel()
	}
	conn := h.conn
	h.conn = nil
	started := h.started
	h.mu.Unlock()

	h.connected.Store(false)
	if conn != nil {
		conn.Close()
	}
	if started {
		<-h.done
	}
}

func (h *Hardware) run(ctx context.Context) {
	defer close(h.done)
	prev := []int(nil)
	for {
		h.mu.Lock()
		conn := h.conn
		h.mu.Unlock()
		if conn == nil {
			if ctx.Err() != nil || h.isStopped() {
				return
			}
			if !h.redial(ctx) {
				return
			}
			continue
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			h.connected.Store(false)
			if ctx.Err() != nil || h.isStopped() {
				return
			}
			log.Printf("hardware: read failed, redialing: %v", err)
			if !h.redial(ctx) {
				return
			}
			prev = nil
			continue
		}

		var frame wsFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			// The bridge also echoes non-JSON keep-alive text; ignore it.
			continue
		}
		switch frame.Type {
		case "PRESS":
			h.emit(Press, frame.Button)
		case "RELEASE":
			h.emit(Release, frame.Button)
		case "STATE":
			// Snapshot frames carry every button; synthesize the edges
			// against the previous snapshot.
			for i, v := range frame.Buttons {
				was := 0
				if i < len(prev) {
					was = prev[i]
				}
				if v != was {
					if v != 0 {
						h.emit(Press, i)
					} else {
						h.emit(Release, i)
					}
				}
			}
			prev = frame.Buttons
		}
	}
}

func (h *Hardware) emit(kind EventKind, button int) {
	if kind == Press && !h.debounce.accept(button) {
		return
	}
	select {
	case h.events <- Event{Kind: kind, Button: button, At: time.Now()}:
	default:
		// The consumer is behind; dropping beats blocking the reader.
	}
}

func (h *Hardware) redial(ctx context.Context) bool {
	for attempt := 1; attempt <= h.Redials; attempt++ {
		select {
		case <-time.After(h.Delay):
		case <-ctx.Done():
			return false
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, h.URL, nil)
		if err != nil {
			log.Printf("hardware: redial %d/%d failed: %v", attempt, h.Redials, err)
			continue
		}
		h.mu.Lock()
		if h.stopped {
			h.mu.Unlock()
			conn.Close()
			return false
		}
		h.conn = conn
		h.mu.Unlock()
		h.connected.Store(true)
		return true
	}
	log.Printf("hardware: gave up after %d redials", h.Redials)
	return false
}

// keepAlive sends a plain-text idle frame on a fixed period so half-open
// connections surface as read errors.
func (h *Hardware) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(h.KeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.mu.Lock()
			conn := h.conn
			h.mu.Unlock()
			if conn == nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil && ctx.Err() == nil {
				log.Printf("hardware: keep-alive failed: %v", err)
			}
		}
	}
}

func (h *Hardware) isStopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}
