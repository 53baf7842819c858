package main

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/derek750/Beat-Shooter/internal/game"
	"github.com/derek750/Beat-Shooter/internal/pointer"
	"github.com/derek750/Beat-Shooter/internal/score"
	"github.com/derek750/Beat-Shooter/internal/session"
	"github.com/derek750/Beat-Shooter/internal/theme"
)

// Program wires the session, the active pointer source, and the scorer into
// the ebiten frame loop. Drawing follows the display's frame callback;
// every state transition keys on wall-clock elapsed time, so dropped frames
// never skew the schedule.
type Program struct {
	session *session.Session
	source  pointer.Source
	scorer  *score.DefaultScorer
	theme   theme.Theme

	audioRef      string
	width, height float64

	fadeIn, visible, fadeOut float64
	baseOpacity              float64
	tileRadius, energyScale  float64
	judgements               []game.Judgement

	face    *text.GoTextFace
	bigFace *text.GoTextFace

	armed bool
}

func NewProgram(
	sess *session.Session,
	source pointer.Source,
	scorer *score.DefaultScorer,
	th theme.Theme,
	audioRef string,
	width, height float64,
	fadeIn, visible, fadeOut, baseOpacity, tileRadius, energyScale float64,
	judgements []game.Judgement,
) (*Program, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return &Program{
		session:     sess,
		source:      source,
		scorer:      scorer,
		theme:       th,
		audioRef:    audioRef,
		width:       width,
		height:      height,
		fadeIn:      fadeIn,
		visible:     visible,
		fadeOut:     fadeOut,
		baseOpacity: baseOpacity,
		tileRadius:  tileRadius,
		energyScale: energyScale,
		judgements:  judgements,
		face:        &text.GoTextFace{Source: src, Size: 20},
		bigFace:     &text.GoTextFace{Source: src, Size: 120},
	}, nil
}

func (p *Program) Update() error {
	phase := p.session.Phase()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if phase == session.Idle {
			return ebiten.Termination
		}
		p.session.Teardown()
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && (phase == session.Idle || phase == session.Ended) {
		p.restart()
		return nil
	}

	p.step(time.Now())
	return nil
}

// restart discards whatever session just ran and begins a new one. The
// scorer must disarm here: Ended goes straight to Loading, so no later
// frame ever observes Idle to clear the flag.
func (p *Program) restart() {
	p.armed = false
	p.session.Begin(p.audioRef)
}

// step is one frame of session and scoring work.
func (p *Program) step(now time.Time) {
	p.session.Advance(now)
	phase := p.session.Phase()

	// Arm the scorer once per session, as soon as the schedule exists.
	if phase == session.Countdown && !p.armed {
		p.scorer.Reset(p.session.Schedule(), p.judgements)
		p.armed = true
	}
	if phase == session.Idle {
		p.armed = false
	}

	elapsed, running := p.session.Elapsed(now)
	playing := phase == session.Playing && running

	// Drain discrete events every frame; they only score during play.
drain:
	for {
		select {
		case ev := <-p.source.Events():
			if playing && ev.Kind == pointer.Press {
				var pos *pointer.State
				if st, ok := p.source.Position(); ok {
					pos = &st
				}
				p.scorer.RegisterPress(pos, elapsed)
			}
		default:
			break drain
		}
	}

	if playing {
		if p.source.Capabilities().ContinuousPosition {
			if pos, ok := p.source.Position(); ok {
				p.scorer.RegisterPointer(pos, elapsed)
			}
		}
		p.scorer.MarkMisses(elapsed)
	}
}

func (p *Program) Draw(screen *ebiten.Image) {
	now := time.Now()
	switch p.session.Phase() {
	case session.Idle:
		p.text(screen, "Press Enter to play, Escape to quit", 40, 60, p.theme.HUDColor())
	case session.Loading:
		p.text(screen, "Analyzing beats...", 40, 60, p.theme.HUDColor())
	case session.Countdown:
		v := p.session.CountdownValue(now)
		p.bigText(screen, fmt.Sprintf("%d", v), p.width/2-40, p.height/2-60, p.theme.CountdownColor())
	case session.Playing:
		p.drawPlaying(screen, now)
	case session.Ended:
		p.drawEnded(screen)
	}
}

func (p *Program) drawPlaying(screen *ebiten.Image, now time.Time) {
	elapsed, ok := p.session.Elapsed(now)
	if !ok {
		return
	}
	schedule := p.session.Schedule()
	if schedule == nil {
		return
	}

	for _, tile := range schedule.Tiles {
		opacity := game.Opacity(elapsed, tile.DisplayAt, p.fadeIn, p.visible, p.fadeOut, p.baseOpacity)
		if opacity <= 0 {
			continue
		}
		// Denormalize with the dimensions the layout was requested with,
		// never the live canvas size.
		cx := float32(tile.Tile.X * schedule.Width)
		cy := float32(tile.Tile.Y * schedule.Height)
		r := float32(game.Radius(p.tileRadius, tile.EnergyNorm, p.energyScale))
		vector.DrawFilledCircle(screen, cx, cy, r, p.theme.TileColor(tile.Type, opacity), true)
	}

	p.drawPointer(screen)
	p.drawHUD(screen, elapsed)
}

func (p *Program) drawPointer(screen *ebiten.Image) {
	meta := p.source.Meta()
	if meta.BBox.Valid {
		vector.StrokeRect(screen,
			float32(meta.BBox.X), float32(meta.BBox.Y),
			float32(meta.BBox.W), float32(meta.BBox.H),
			2, p.theme.CursorColor(), true)
	}
	if pos, ok := p.source.Position(); ok {
		vector.StrokeCircle(screen, float32(pos.X), float32(pos.Y), 14, 3, p.theme.CursorColor(), true)
	}
	if meta.HasCrosshair {
		x, y := float32(meta.Crosshair.X), float32(meta.Crosshair.Y)
		c := p.theme.CrosshairColor()
		vector.StrokeLine(screen, x-12, y, x+12, y, 2, c, true)
		vector.StrokeLine(screen, x, y-12, x, y+12, 2, c, true)
	}
}

func (p *Program) drawHUD(screen *ebiten.Image, elapsed float64) {
	col := p.theme.HUDColor()
	y := 28.0
	line := func(s string) {
		p.text(screen, s, 16, y, col)
		y += 26
	}

	line(fmt.Sprintf("Score: %d", p.scorer.Score()))
	line(fmt.Sprintf("Time: %5.1fs", elapsed))

	caps := p.source.Capabilities()
	if caps.ContinuousPosition {
		if pos, ok := p.source.Position(); ok {
			line(fmt.Sprintf("Pointer: %4.0f, %4.0f", pos.X, pos.Y))
		} else {
			line("Pointer: lost")
		}
	}
	if caps.Orientation {
		if meta := p.source.Meta(); meta.HasAngles {
			line(fmt.Sprintf("Rot %5.1f  Yaw %5.1f  Tilt %5.1f",
				meta.Angles.Rotation, meta.Angles.Yaw, meta.Angles.Tilt))
		}
	}
	if caps.DiscreteEvents {
		if p.source.Connected() {
			line("Controller: connected")
		} else {
			line("Controller: disconnected")
		}
	}
}

func (p *Program) drawEnded(screen *ebiten.Image) {
	col := p.theme.HUDColor()
	p.text(screen, fmt.Sprintf("Finished. Score: %d", p.scorer.Score()), 40, 60, col)
	y := 100.0
	counts := p.scorer.Counts()
	for i, j := range p.judgements {
		if i < len(counts) {
			p.text(screen, fmt.Sprintf("%6s: %4d", j.Name, counts[i]), 40, y, col)
			y += 26
		}
	}
	p.text(screen, "Enter to play again, Escape for menu", 40, y+26, col)
}

func (p *Program) text(screen *ebiten.Image, s string, x, y float64, col color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	text.Draw(screen, s, p.face, op)
}

func (p *Program) bigText(screen *ebiten.Image, s string, x, y float64, col color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	text.Draw(screen, s, p.bigFace, op)
}

func (p *Program) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(p.width), int(p.height)
}
