package score

import (
	"math"
	"time"

	"github.com/derek750/Beat-Shooter/internal/game"
	"github.com/derek750/Beat-Shooter/internal/pointer"
)

// DefaultScorer walks the schedule for the closest unhit tile, the same way
// the closest-note search works in a lane-based rhythm game, except the
// "lane" here is the pointer intersecting the tile's circle.
type DefaultScorer struct {
	schedule   *game.Schedule
	judgements []game.Judgement

	// Visibility window and tile sizing, seconds and pixels.
	FadeIn, Visible, FadeOut float64
	TileRadius, EnergyScale  float64

	hit    []bool
	missed []bool
	inside []bool
	counts []int
	score  int
}

func (s *DefaultScorer) Reset(schedule *game.Schedule, judgements []game.Judgement) {
	s.schedule = schedule
	s.judgements = judgements
	n := 0
	if schedule != nil {
		n = len(schedule.Tiles)
	}
	s.hit = make([]bool, n)
	s.missed = make([]bool, n)
	s.inside = make([]bool, n)
	s.counts = make([]int, len(judgements))
	s.score = 0
}

func (s *DefaultScorer) Score() int { return s.score }

// Counts returns hits per judgement bucket, the last bucket being misses.
func (s *DefaultScorer) Counts() []int { return s.counts }

// RegisterPress awards a debounced button press to the closest unhit tile
// with an open visibility window. When a pointer position is available it
// must also be inside that tile's circle; a pointer-less build (hardware
// only) scores on timing alone.
func (s *DefaultScorer) RegisterPress(pos *pointer.State, elapsed float64) bool {
	if s.schedule == nil {
		return false
	}
	best := -1
	bestDist := math.MaxFloat64
	for i, tile := range s.schedule.Tiles {
		if s.hit[i] || s.missed[i] {
			continue
		}
		if !s.windowOpen(tile, elapsed) {
			continue
		}
		if pos != nil && !s.insideTile(tile, *pos) {
			continue
		}
		if d := math.Abs(elapsed - tile.DisplayAt); d < bestDist {
			bestDist = d
			best = i
		}
	}
	if best < 0 {
		return false
	}
	s.award(best, bestDist)
	return true
}

// RegisterPointer scores tiles on pointer entry: crossing into an unhit
// tile's circle while its window is open counts once. Used by the
// continuous-position sources, which have no button.
func (s *DefaultScorer) RegisterPointer(pos pointer.State, elapsed float64) bool {
	if s.schedule == nil {
		return false
	}
	scored := false
	for i, tile := range s.schedule.Tiles {
		open := s.windowOpen(tile, elapsed)
		in := open && s.insideTile(tile, pos)
		entered := in && !s.inside[i]
		s.inside[i] = in
		if entered && !s.hit[i] && !s.missed[i] {
			s.award(i, math.Abs(elapsed-tile.DisplayAt))
			scored = true
		}
	}
	return scored
}

// MarkMisses closes out tiles whose window ended unhit.
func (s *DefaultScorer) MarkMisses(elapsed float64) {
	if s.schedule == nil {
		return
	}
	for i, tile := range s.schedule.Tiles {
		if s.hit[i] || s.missed[i] {
			continue
		}
		if elapsed > tile.DisplayAt+s.FadeIn+s.Visible+s.FadeOut {
			s.missed[i] = true
			if n := len(s.counts); n > 0 {
				s.counts[n-1]++
			}
		}
	}
}

func (s *DefaultScorer) award(i int, dist float64) {
	s.hit[i] = true
	s.score++
	// Hits slower than every positive window land in the slowest positive
	// bucket; the final bucket only ever counts misses.
	idx := -1
	d := time.Duration(dist * float64(time.Second))
	for j, judgement := range s.judgements {
		if judgement.Window < 0 {
			break
		}
		idx = j
		if d < judgement.Window {
			break
		}
	}
	if idx >= 0 && idx < len(s.counts) {
		s.counts[idx]++
	}
}

func (s *DefaultScorer) windowOpen(tile game.ScheduledTile, elapsed float64) bool {
	return game.Opacity(elapsed, tile.DisplayAt, s.FadeIn, s.Visible, s.FadeOut, 1) > 0
}

func (s *DefaultScorer) insideTile(tile game.ScheduledTile, pos pointer.State) bool {
	cx := tile.Tile.X * s.schedule.Width
	cy := tile.Tile.Y * s.schedule.Height
	r := game.Radius(s.TileRadius, tile.EnergyNorm, s.EnergyScale)
	return math.Hypot(pos.X-cx, pos.Y-cy) <= r
}
