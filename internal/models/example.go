package models

// GenerationExample pairs a unit's text with the model's trimmed response.
type GenerationExample struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// RatingExample pairs a unit's text with its 1-10 quality score.
type RatingExample struct {
	Input  string `json:"input"`
	Output int    `json:"output"`
}

// Rating bounds accepted from the model.
const (
	MinRating = 1
	MaxRating = 10
)
