package game

import "time"

// Judgement is a timing bucket for hits. A negative Window marks the
// catch-all miss bucket.
type Judgement struct {
	Window time.Duration
	Name   string
}
