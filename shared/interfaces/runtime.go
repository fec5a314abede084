package interfaces

import "time"

// Clock supplies submission timestamps.
type Clock interface {
	Now() time.Time
}

// RandomSource supplies jitter and id entropy. *math/rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}
