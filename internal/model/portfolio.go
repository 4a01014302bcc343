package model

import "time"

// PortfolioWork is one project in the studio's portfolio.
//
// ImageURL and TrailerURL point at externally hosted media; the site never
// uploads or proxies them. ClientName is the attribution line (client or
// owner/producer).
type PortfolioWork struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl"`
	TrailerURL  string    `json:"trailerUrl,omitempty"`
	ClientName  string    `json:"clientName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
