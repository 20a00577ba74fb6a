package memory

import (
	"sync"

	"tribunal/contexts/moderation/report-engine/domain/entities"
)

// ManualClock is a hand-advanced height counter for deterministic tests of
// the voting-window boundaries.
type ManualClock struct {
	mu     sync.RWMutex
	height entities.Height
}

func NewManualClock(start entities.Height) *ManualClock {
	return &ManualClock{height: start}
}

func (c *ManualClock) Now() entities.Height {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.height
}

func (c *ManualClock) Advance(delta entities.Height) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height += delta
}

// Set moves the clock to an absolute height. Heights only move forward.
func (c *ManualClock) Set(height entities.Height) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if height > c.height {
		c.height = height
	}
}
