package main

import (
	"context"
	"testing"
	"time"

	"github.com/derek750/Beat-Shooter/internal/game"
	"github.com/derek750/Beat-Shooter/internal/pointer"
	"github.com/derek750/Beat-Shooter/internal/score"
	"github.com/derek750/Beat-Shooter/internal/session"
	"github.com/derek750/Beat-Shooter/internal/theme"
)

type cannedBuilder struct {
	schedule *game.Schedule
}

func (b cannedBuilder) Build(_ context.Context, _ string) *game.Schedule {
	return b.schedule
}

type nopAudio struct{}

func (nopAudio) Play() error { return nil }
func (nopAudio) Stop()       {}

// stubSource is a button-only source fed by the test.
type stubSource struct {
	events chan pointer.Event
}

func (s *stubSource) Start(_ context.Context) error   { return nil }
func (s *stubSource) Stop()                           {}
func (s *stubSource) Position() (pointer.State, bool) { return pointer.State{}, false }
func (s *stubSource) Meta() pointer.Meta              { return pointer.Meta{} }
func (s *stubSource) Events() <-chan pointer.Event    { return s.events }
func (s *stubSource) Connected() bool                 { return true }
func (s *stubSource) Capabilities() pointer.Capabilities {
	return pointer.Capabilities{DiscreteEvents: true}
}

func waitPlaying(t *testing.T, prog *Program, now time.Time) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		prog.step(now)
		if session.Playing == prog.session.Phase() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session stuck in %v", prog.session.Phase())
}

// Enter on the end screen begins a fresh session without any frame in
// between observing Idle. The scorer must start that session from zero and
// accept hits again.
func TestReplayResetsScore(t *testing.T) {
	schedule := &game.Schedule{
		Tiles: []game.ScheduledTile{
			{Tile: game.Tile{X: 0.5, Y: 0.5}, DisplayAt: 0, EnergyNorm: 0.5},
		},
		Width:  1280,
		Height: 720,
	}
	sess := session.New(
		cannedBuilder{schedule},
		func(string) (session.AudioPlayer, error) { return nopAudio{}, nil },
		session.Config{FadeIn: 0.05, Visible: 4, FadeOut: 0.4, EndDelay: 3},
	)
	defer sess.Teardown()

	src := &stubSource{events: make(chan pointer.Event, 4)}
	scorer := &score.DefaultScorer{
		FadeIn: 0.05, Visible: 4, FadeOut: 0.4,
		TileRadius: 48, EnergyScale: 0.6,
	}
	judgements := []game.Judgement{
		{Window: time.Second, Name: "Hit"},
		{Window: -1, Name: "Miss"},
	}

	prog, err := NewProgram(sess, src, scorer, &theme.DefaultTheme{}, "song.mp3",
		1280, 720, 0.05, 4, 0.4, 0.85, 48, 0.6, judgements)
	if nil != err {
		t.Fatalf("unable to build program, %v", err)
	}

	base := time.Now()
	prog.restart()
	waitPlaying(t, prog, base)

	src.events <- pointer.Event{Kind: pointer.Press}
	prog.step(base.Add(200 * time.Millisecond))
	if got := scorer.Score(); 1 != got {
		t.Errorf("score after press, got %v, want 1", got)
	}

	prog.step(base.Add(8 * time.Second))
	if phase := sess.Phase(); session.Ended != phase {
		t.Fatalf("phase after schedule end, got %v, want ended", phase)
	}

	prog.restart()
	again := base.Add(9 * time.Second)
	waitPlaying(t, prog, again)
	if got := scorer.Score(); 0 != got {
		t.Errorf("score at replay start, got %v, want 0", got)
	}
	src.events <- pointer.Event{Kind: pointer.Press}
	prog.step(again.Add(200 * time.Millisecond))
	if got := scorer.Score(); 1 != got {
		t.Errorf("score after replay press, got %v, want 1", got)
	}
}
