package score

import (
	"github.com/derek750/Beat-Shooter/internal/game"
	"github.com/derek750/Beat-Shooter/internal/pointer"
)

// Scorer accumulates hits for one session. The score is monotone
// non-decreasing and mutated only by discrete hit-class events.
type Scorer interface {
	Reset(schedule *game.Schedule, judgements []game.Judgement)
	RegisterPress(pos *pointer.State, elapsed float64) bool
	RegisterPointer(pos pointer.State, elapsed float64) bool
	MarkMisses(elapsed float64)
	Score() int
	Counts() []int
}
