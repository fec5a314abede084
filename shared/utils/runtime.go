package utils

import (
	"math/rand"
	"sync"
	"time"

	"butterfly-story/shared/interfaces"
)

var (
	_ interfaces.Clock        = SystemClock{}
	_ interfaces.RandomSource = (*LockedRand)(nil)
)

// SystemClock returns wall-clock time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// LockedRand is a *rand.Rand safe for concurrent use by request handlers.
type LockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLockedRand seeds a new source. Pass 0 to seed from the clock.
func NewLockedRand(seed int64) *LockedRand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func (r *LockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

func (r *LockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}
