// Package model defines the records the studio site stores and serves.
// These are plain structs with json tags; storage-specific mapping lives in the
// repository packages so the model stays free of driver concerns.
package model

import "time"

// Service is one offering shown on the public services page.
//
// Icon is a symbolic glyph tag ("mic", "music", "headphones"), never image data.
// Price is a display string ("$100", "from $250/day"), not a number, because the
// studio quotes prices in free text.
type Service struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Price       string    `json:"price"`
	Features    []string  `json:"features"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
