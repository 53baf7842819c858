package timeline

import (
	"context"

	"github.com/derek750/Beat-Shooter/internal/game"
)

// Builder turns an audio reference into a per-tile schedule. It never fails:
// unreachable or misbehaving services degrade to a synthesized schedule.
type Builder interface {
	Build(ctx context.Context, audioURL string) *game.Schedule
}
