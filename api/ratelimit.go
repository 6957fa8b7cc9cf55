package api

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/laurfratila/microblog/internal/snowflake"
)

// pollLimiters rate limits the notification poll per user. Clients are
// expected to poll on a fixed interval; a limiter per user keeps a
// misbehaving client from hammering the table without slowing anyone
// else down.
type pollLimiters struct {
	mu       sync.Mutex
	limiters map[snowflake.ID]*rate.Limiter
}

func newPollLimiters() *pollLimiters {
	return &pollLimiters{
		limiters: make(map[snowflake.ID]*rate.Limiter),
	}
}

func (p *pollLimiters) allow(id snowflake.ID) bool {
	p.mu.Lock()
	limiter, ok := p.limiters[id]
	if !ok {
		// one poll per second sustained, with headroom for a burst
		// when a client catches up after a disconnect.
		limiter = rate.NewLimiter(rate.Limit(1), 10)
		p.limiters[id] = limiter
	}
	p.mu.Unlock()
	return limiter.Allow()
}
