package theme

import (
	"image/color"

	"github.com/derek750/Beat-Shooter/internal/game"
)

// Theme maps game state to colours.
type Theme interface {
	TileColor(t game.BeatType, opacity float64) color.RGBA
	CursorColor() color.RGBA
	CrosshairColor() color.RGBA
	HUDColor() color.RGBA
	CountdownColor() color.RGBA
}
