package models

// Narrative is the story text and chapter path derived from the ordered choice list.
type Narrative struct {
	StoryText string   `json:"storyText"`
	Path      []string `json:"path"`
}

// EffectBar is one row of the player's butterfly effect chart.
// WidthPercent is relative to the player's strongest choice.
type EffectBar struct {
	ChoiceID     string  `json:"choiceId"`
	Index        int     `json:"index"`
	Effect       float64 `json:"effect"`
	WidthPercent float64 `json:"widthPercent"`
}

// PlayerStats - агрегаты для панели статистики игрока.
type PlayerStats struct {
	Player      string      `json:"player"`
	ChoicesMade int         `json:"choicesMade"`
	MaxEffect   float64     `json:"maxEffect"`
	Chapters    int         `json:"chapters"`
	Chart       []EffectBar `json:"chart"`
}
