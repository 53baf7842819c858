package game

// ScheduledTile pairs a tile with its timeline entry.
type ScheduledTile struct {
	Tile       Tile
	DisplayAt  float64 // seconds since audio start
	Type       BeatType
	EnergyNorm float64 // in [0,1]
}

// Schedule is the per-session tile schedule. It is written once by the
// timeline builder and read-only afterwards. Width and Height are the
// dimensions the layout was requested with; denormalization must use them,
// never a later canvas size.
type Schedule struct {
	Tiles    []ScheduledTile
	Width    float64
	Height   float64
	Duration float64 // audio duration from the beat service, 0 when unknown
}

// EndTime is the elapsed time at which the session auto-ends: the close of
// the last visibility window (or the audio duration, whichever is later)
// plus the end delay. An empty schedule has no end time.
func (s *Schedule) EndTime(fadeIn, visible, fadeOut, endDelay float64) (float64, bool) {
	if len(s.Tiles) == 0 {
		return 0, false
	}
	last := 0.0
	for _, t := range s.Tiles {
		if end := t.DisplayAt + fadeIn + visible + fadeOut; end > last {
			last = end
		}
	}
	if s.Duration > last {
		last = s.Duration
	}
	return last + endDelay, true
}

// Opacity is the three-phase visibility window: rising over fadeIn, held at
// base for visible, falling over fadeOut, zero outside. Continuous and
// monotone within each phase.
func Opacity(elapsed, displayAt, fadeIn, visible, fadeOut, base float64) float64 {
	since := elapsed - displayAt
	switch {
	case since < 0:
		return 0
	case since < fadeIn:
		return base * (since / fadeIn)
	case since < fadeIn+visible:
		return base
	case since < fadeIn+visible+fadeOut:
		return base * (1 - (since-fadeIn-visible)/fadeOut)
	default:
		return 0
	}
}

// Radius scales the base tile radius by normalized beat energy.
func Radius(base, energyNorm, scale float64) float64 {
	return base * (1 + energyNorm*scale)
}
