package signal

import (
	"sync"
	"time"

	"github.com/dkeye/impostor/internal/domain"
)

// ActionRateLimiter caps how many game actions a player may send per
// sliding window. Excess actions are dropped, matching the engine's
// silent no-op policy.
type ActionRateLimiter struct {
	mu       sync.Mutex
	history  map[domain.PlayerID][]time.Time
	limit    int
	interval time.Duration
}

func NewActionRateLimiter(limit int, interval time.Duration) *ActionRateLimiter {
	return &ActionRateLimiter{
		history:  make(map[domain.PlayerID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *ActionRateLimiter) Allow(id domain.PlayerID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[id]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) >= rl.limit {
		rl.history[id] = fresh
		return false
	}
	fresh = append(fresh, now)
	rl.history[id] = fresh
	return true
}
