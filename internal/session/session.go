// Package session owns the play/countdown/ended state machine and the
// session clock. The renderer only reads; all writes happen here, driven by
// wall-clock time passed into Advance.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/derek750/Beat-Shooter/internal/game"
	"github.com/derek750/Beat-Shooter/internal/timeline"
	"github.com/google/uuid"
)

// Phase is the session state.
type Phase int

const (
	Idle Phase = iota
	Loading
	Countdown
	Playing
	Ended
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Countdown:
		return "countdown"
	case Playing:
		return "playing"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// Config are the timing constants the session derives its transitions from.
// Durations are seconds, matching the schedule's time base.
type Config struct {
	FadeIn, Visible, FadeOut, EndDelay float64
	CountdownFrom                      int
}

// Session drives one play-through. The schedule is written once when the
// builder resolves and read-only afterwards; the clock is set once on the
// countdown-to-play transition and never again.
type Session struct {
	ID uuid.UUID

	builder  timeline.Builder
	newAudio func(ref string) (AudioPlayer, error)
	cfg      Config

	mu             sync.Mutex
	phase          Phase
	schedule       *game.Schedule
	audio          AudioPlayer
	endTime        float64
	hasEnd         bool
	ready          bool
	countdownStart time.Time
	startedAt      time.Time
	started        bool
	cancel         context.CancelFunc
	generation     int
}

// New wires a session. newAudio is injectable so tests run without a
// speaker.
func New(builder timeline.Builder, newAudio func(ref string) (AudioPlayer, error), cfg Config) *Session {
	return &Session{
		ID:       uuid.New(),
		builder:  builder,
		newAudio: newAudio,
		cfg:      cfg,
	}
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Schedule returns the built schedule, nil before the builder resolved.
func (s *Session) Schedule() *game.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule
}

// EndTime reports the elapsed time at which the session auto-ends, when
// defined.
func (s *Session) EndTime() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endTime, s.hasEnd
}

// Elapsed is seconds since playback started; false before the clock is set.
func (s *Session) Elapsed(now time.Time) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return 0, false
	}
	return now.Sub(s.startedAt).Seconds(), true
}

// CountdownValue is the number shown on screen during the countdown.
func (s *Session) CountdownValue(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Countdown {
		return 0
	}
	v := s.cfg.CountdownFrom - int(now.Sub(s.countdownStart).Seconds())
	if v < 0 {
		v = 0
	}
	return v
}

// Begin accepts a new audio source: whatever session was running is
// discarded, then loading starts. The builder always resolves, so Loading
// always reaches Countdown unless torn down first.
func (s *Session) Begin(audioRef string) {
	s.Teardown()

	s.mu.Lock()
	s.phase = Loading
	s.generation++
	gen := s.generation
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		sched := s.builder.Build(ctx, audioRef)
		var player AudioPlayer
		if ctx.Err() == nil {
			var err error
			player, err = s.newAudio(audioRef)
			if err != nil {
				// Degraded mode: the schedule still plays, silently.
				log.Printf("session %s: audio unavailable: %v", s.ID, err)
			}
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.generation || ctx.Err() != nil {
			if player != nil {
				player.Stop()
			}
			return
		}
		s.schedule = sched
		s.audio = player
		s.endTime, s.hasEnd = sched.EndTime(s.cfg.FadeIn, s.cfg.Visible, s.cfg.FadeOut, s.cfg.EndDelay)
		s.ready = true
		log.Printf("session %s: schedule ready, %d tiles", s.ID, len(sched.Tiles))
	}()
}

// Advance moves the state machine forward against the wall clock. Called
// once per frame; all transitions key on elapsed time, never frame count.
func (s *Session) Advance(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case Loading:
		if s.ready {
			s.phase = Countdown
			s.countdownStart = now
		}
	case Countdown:
		if s.cfg.CountdownFrom-int(now.Sub(s.countdownStart).Seconds()) <= 0 {
			if !s.started {
				s.started = true
				s.startedAt = now
			}
			if s.audio != nil {
				if err := s.audio.Play(); err != nil {
					log.Printf("session %s: playback failed: %v", s.ID, err)
				}
			}
			s.phase = Playing
		}
	case Playing:
		if s.hasEnd && now.Sub(s.startedAt).Seconds() >= s.endTime {
			if s.audio != nil {
				s.audio.Stop()
			}
			s.started = false
			s.phase = Ended
		}
	}
}

// Teardown releases everything the session acquired and returns to Idle.
// Safe to call in any phase, any number of times.
func (s *Session) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.audio != nil {
		s.audio.Stop()
		s.audio = nil
	}
	s.generation++
	s.phase = Idle
	s.schedule = nil
	s.ready = false
	s.started = false
	s.hasEnd = false
	s.endTime = 0
}
