package service

import (
	"math"

	"butterfly-story/shared/models"
)

// BuildStats aggregates a player's own choices (in submission order) for the stats panel.
func BuildStats(player string, own []models.Choice, chapters int) *models.PlayerStats {
	stats := &models.PlayerStats{
		Player:      player,
		ChoicesMade: len(own),
		Chapters:    chapters,
		Chart:       make([]models.EffectBar, 0, len(own)),
	}
	if len(own) == 0 {
		return stats
	}

	for _, c := range own {
		stats.MaxEffect = math.Max(stats.MaxEffect, c.ButterflyEffect)
	}
	// Масштаб не меньше 1, чтобы не делить на ноль при нулевых эффектах.
	scale := math.Max(stats.MaxEffect, 1)
	for i, c := range own {
		stats.Chart = append(stats.Chart, models.EffectBar{
			ChoiceID:     c.ID,
			Index:        i + 1,
			Effect:       c.ButterflyEffect,
			WidthPercent: c.ButterflyEffect / scale * 100,
		})
	}
	return stats
}
