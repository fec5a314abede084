// Package narrative folds the ordered choice list into a story text and a chapter path.
package narrative

import (
	"fmt"
	"strings"

	"butterfly-story/shared/models"
)

const (
	// OpeningLine начинает любую историю.
	OpeningLine = "The story begins in a quiet village..."
	// OpeningPath - первая точка маршрута.
	OpeningPath = "Chapter 1: The Village"

	// AdvanceEvery: глава сдвигается на каждой третьей развилке (индексы 0, 3, 6, ...).
	AdvanceEvery = 3
)

var segments = []string{
	"A mysterious stranger arrives...",
	"The ancient prophecy begins to unfold...",
	"Secrets from the past resurface...",
	"The village faces an unexpected threat...",
	"A hidden power awakens within you...",
}

var locations = []string{
	"Forest of Whispers",
	"Ruins of Eldertree",
	"Crystal Caves",
	"Sky Temple",
	"Underwater City",
}

// Derive builds the narrative from choices in submission order.
// It keeps no state between calls: the same input always gives the same output.
func Derive(choices []models.Choice) models.Narrative {
	var story strings.Builder
	story.WriteString(OpeningLine)
	path := []string{OpeningPath}

	for i, choice := range choices {
		if i%AdvanceEvery != 0 {
			continue
		}
		chapter := choice.Chapter + 1
		fmt.Fprintf(&story, "\n\nChapter %d: %s", chapter, Segment(chapter))
		path = append(path, fmt.Sprintf("Chapter %d: %s", chapter, Location(chapter)))
	}

	return models.Narrative{StoryText: story.String(), Path: path}
}

// Segment picks the narrative segment for a chapter.
func Segment(chapter int) string { return segments[index(chapter, len(segments))] }

// Location picks the location label for a chapter.
func Location(chapter int) string { return locations[index(chapter, len(locations))] }

// index is chapter mod n, kept non-negative for legacy negative chapters.
func index(chapter, n int) int {
	return ((chapter % n) + n) % n
}
