package jobsearch

import (
	"fmt"
	"sync"

	"github.com/spigell/skillbuddy/internal/ai"
)

// Quota counts outbound search requests against a fixed allowance.
type Quota struct {
	mu    sync.Mutex
	limit int
	used  int
}

func NewQuota(limit int) *Quota {
	return &Quota{limit: limit}
}

// Reserve consumes one request or returns ai.ErrQuotaExhausted.
func (q *Quota) Reserve() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.used >= q.limit {
		return fmt.Errorf("job search quota of %d requests used: %w", q.limit, ai.ErrQuotaExhausted)
	}
	q.used++
	return nil
}

func (q *Quota) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return max(q.limit-q.used, 0)
}
