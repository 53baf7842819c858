package game

// Tile is a spatial target in normalized [0,1]x[0,1] coordinates, origin
// top-left. Tiles are immutable once fetched; one array per session,
// index-aligned with the beat timeline.
type Tile struct {
	X, Y float64
}
