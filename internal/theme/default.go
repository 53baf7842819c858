package theme

import (
	"image/color"

	"github.com/derek750/Beat-Shooter/internal/game"
)

type DefaultTheme struct{}

var (
	highTile = color.RGBA{236, 30, 0, 255}
	lowTile  = color.RGBA{0, 118, 236, 255}
)

// TileColor picks the beat-type colour with the window opacity premultiplied
// in, the way ebiten expects alpha.
func (t *DefaultTheme) TileColor(bt game.BeatType, opacity float64) color.RGBA {
	c := lowTile
	if bt == game.BeatHigh {
		c = highTile
	}
	return color.RGBA{
		R: uint8(float64(c.R) * opacity),
		G: uint8(float64(c.G) * opacity),
		B: uint8(float64(c.B) * opacity),
		A: uint8(255 * opacity),
	}
}

func (t *DefaultTheme) CursorColor() color.RGBA {
	return color.RGBA{236, 195, 0, 255}
}

func (t *DefaultTheme) CrosshairColor() color.RGBA {
	return color.RGBA{0, 236, 128, 255}
}

func (t *DefaultTheme) HUDColor() color.RGBA {
	return color.RGBA{220, 220, 220, 255}
}

func (t *DefaultTheme) CountdownColor() color.RGBA {
	return color.RGBA{255, 255, 255, 255}
}
