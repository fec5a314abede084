// Package butterfly computes the "butterfly effect" score of a new choice.
package butterfly

import (
	"math"
	"strings"

	"butterfly-story/shared/interfaces"
	"butterfly-story/shared/models"
)

// JitterRange is the half-width of the random term added to the accumulated effect.
const JitterRange = 10.0

// Compute returns the effect score for a new choice by player.
//
// It sums the scores already baked into the player's earlier choices, adds a
// jitter drawn uniformly from [-JitterRange, +JitterRange) and clamps the result
// to [models.MinEffect, models.MaxEffect]. Stored scores are trusted as they are.
func Compute(history []models.Choice, player string, rng interfaces.RandomSource) float64 {
	return Clamp(Accumulated(history, player) + Jitter(rng))
}

// Accumulated sums effect scores of the choices owned by player.
// Addresses compare case-insensitively: wallets hand out checksummed and lower-case forms.
func Accumulated(history []models.Choice, player string) float64 {
	var sum float64
	for _, c := range history {
		if strings.EqualFold(c.Player, player) {
			sum += c.ButterflyEffect
		}
	}
	return sum
}

// Jitter draws the bounded random term.
func Jitter(rng interfaces.RandomSource) float64 {
	return rng.Float64()*2*JitterRange - JitterRange
}

// Clamp bounds v to the effect range. NaN collapses to the lower bound.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return models.MinEffect
	}
	return math.Min(models.MaxEffect, math.Max(models.MinEffect, v))
}
