package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/derek750/Beat-Shooter/internal/config"
	"github.com/derek750/Beat-Shooter/internal/pointer"
	"github.com/derek750/Beat-Shooter/internal/score"
	"github.com/derek750/Beat-Shooter/internal/session"
	"github.com/derek750/Beat-Shooter/internal/theme"
	"github.com/derek750/Beat-Shooter/internal/timeline"
)

func main() {
	config.Parse()
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}

func newSource() (pointer.Source, error) {
	switch *config.Input {
	case "hardware":
		return pointer.NewHardware(
			*config.ESPURL,
			*config.KeepAlive,
			*config.Debounce,
			*config.RedialDelay,
			*config.Redials,
		), nil
	case "color":
		frames := &pointer.HTTPFrameSource{URL: *config.CameraURL}
		return pointer.NewColor(
			*config.APIURL,
			http.DefaultClient,
			frames,
			*config.CVInterval,
			*config.Width,
			*config.Height,
		), nil
	case "hand":
		frames := &pointer.HTTPFrameSource{URL: *config.CameraURL}
		detector := &pointer.HTTPLandmarkDetector{URL: *config.LandmarksURL}
		return pointer.NewHand(frames, detector, *config.Width, *config.Height, *config.CrosshairZ), nil
	}
	return nil, fmt.Errorf("unknown input source %q", *config.Input)
}

func run() error {
	builder := &timeline.DefaultBuilder{
		Client:          http.DefaultClient,
		BaseURL:         *config.APIURL,
		Width:           *config.Width,
		Height:          *config.Height,
		TileWindow:      *config.TileWindow,
		Spacing:         *config.TileSpacing,
		FallbackSpacing: *config.FallbackSpacing,
		Timeout:         *config.SetupTimeout,
		Retries:         *config.SetupRetries,
		Backoff:         *config.RetryBackoff,
	}

	source, err := newSource()
	if err != nil {
		return err
	}
	// Only camera permission blocks entry to play; the controller adapter
	// starts disconnected and redials, and everything later degrades per
	// tick instead.
	if err := source.Start(context.Background()); err != nil {
		return fmt.Errorf("input source unavailable: %w", err)
	}
	defer source.Stop()

	sess := session.New(builder, session.NewAudio, session.Config{
		FadeIn:        config.FadeIn.Seconds(),
		Visible:       config.Visible.Seconds(),
		FadeOut:       config.FadeOut.Seconds(),
		EndDelay:      config.EndDelay.Seconds(),
		CountdownFrom: *config.Countdown,
	})
	defer sess.Teardown()

	scorer := &score.DefaultScorer{
		FadeIn:      config.FadeIn.Seconds(),
		Visible:     config.Visible.Seconds(),
		FadeOut:     config.FadeOut.Seconds(),
		TileRadius:  *config.TileRadius,
		EnergyScale: *config.EnergyScale,
	}

	program, err := NewProgram(
		sess,
		source,
		scorer,
		&theme.DefaultTheme{},
		*config.Audio,
		*config.Width, *config.Height,
		config.FadeIn.Seconds(), config.Visible.Seconds(), config.FadeOut.Seconds(),
		*config.BaseOpacity, *config.TileRadius, *config.EnergyScale,
		config.Judgements,
	)
	if err != nil {
		return err
	}

	log.Printf("session %s: input=%s audio=%s", sess.ID, *config.Input, *config.Audio)

	ebiten.SetWindowSize(int(*config.Width), int(*config.Height))
	ebiten.SetWindowTitle("Beat Shooter")
	ebiten.SetVsyncEnabled(true)
	return ebiten.RunGame(program)
}
