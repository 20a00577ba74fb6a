package chain

import (
	"time"

	"tribunal/contexts/moderation/report-engine/domain/entities"
)

// IntervalClock derives a monotonic height from wall time: heights advance by
// one every BlockInterval since Genesis. It stands in for the external block
// counter when the engine runs without a chain connection.
type IntervalClock struct {
	Genesis       time.Time
	BlockInterval time.Duration
}

func (c IntervalClock) Now() entities.Height {
	interval := c.BlockInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	elapsed := time.Since(c.Genesis)
	if elapsed < 0 {
		return 0
	}
	return entities.Height(elapsed / interval)
}
