// Package gamedata resolves game ids into store metadata through a two-tier
// cache (in-memory + sqlite) with request coalescing and a token-bucket rate
// limit on the upstream fetch.
package gamedata

import "errors"

// ErrNotAvailable means the id does not resolve to a matchable game. Callers
// treat it as "no data", never as a fault.
var ErrNotAvailable = errors.New("game data not available")

// GameData is the metadata record for one game, in the upstream wire shape.
type GameData struct {
	Name               string         `json:"name"`
	Type               string         `json:"type"`
	ShortDescription   string         `json:"short_description,omitempty"`
	HeaderImage        string         `json:"header_image,omitempty"`
	Genres             []Genre        `json:"genres,omitempty"`
	Categories         []Category     `json:"categories,omitempty"`
	SupportedLanguages string         `json:"supported_languages,omitempty"`
	PriceOverview      *PriceOverview `json:"price_overview,omitempty"`
	ReleaseDate        *ReleaseDate   `json:"release_date,omitempty"`
	Developers         []string       `json:"developers,omitempty"`
	Publishers         []string       `json:"publishers,omitempty"`
	ReviewSummary      *ReviewSummary `json:"review_summary,omitempty"`
}

// Genre is a descriptive genre tag.
type Genre struct {
	Description string `json:"description"`
}

// Category is a store category tag. Category id 1 marks multiplayer support.
type Category struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// PriceOverview carries the display price.
type PriceOverview struct {
	FinalFormatted string `json:"final_formatted,omitempty"`
}

// ReleaseDate carries the display release date.
type ReleaseDate struct {
	ComingSoon bool   `json:"coming_soon"`
	Date       string `json:"date,omitempty"`
}

// ReviewSummary is the aggregate review data for a game.
type ReviewSummary struct {
	ReviewScore     int    `json:"review_score"`
	ReviewScoreDesc string `json:"review_score_desc"`
	TotalPositive   int    `json:"total_positive"`
	TotalNegative   int    `json:"total_negative"`
	TotalReviews    int    `json:"total_reviews"`
}

// HasCategory reports whether the record carries the given category id.
func (g *GameData) HasCategory(id int) bool {
	for _, c := range g.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}
