package service

import (
	"context"
	"fmt"
)

// DefaultServices is the studio's launch catalogue. Prices were never
// published, so they read as quote-on-request.
var DefaultServices = []ServiceInput{
	{
		Title:       "Dialog editing & ADR",
		Description: "Professional dialogue editing and Automated Dialogue Replacement for clear, crisp sound.",
		Icon:        "mic",
		Price:       "Contact for quote",
		Features: []string{
			"Dialogue editing",
			"ADR sessions",
			"Voiceovers",
			"Sync-to-picture recording",
			"Multilingual recording",
		},
	},
	{
		Title:       "Sound design & Editing",
		Description: "Immersive soundscapes and effects to bring your story to life.",
		Icon:        "headphones",
		Price:       "Contact for quote",
		Features: []string{
			"Foley",
			"Sound effects",
			"Ambience creation",
			"Noise reduction",
			"Sound restoration",
		},
	},
	{
		Title:       "Mixing & Mastering",
		Description: "Final polish for cinema, TV, or streaming platforms.",
		Icon:        "music",
		Price:       "Contact for quote",
		Features: []string{
			"Stereo, 5.1, or Dolby Atmos mixing",
			"Sound balancing",
			"Loudness mastering",
			"Final deliverables for DCP or broadcast",
		},
	},
}

// DefaultWorks are the placeholder portfolio entries shipped with the site.
var DefaultWorks = []WorkInput{
	{
		Title:       "Project One",
		Description: "A cinematic masterpiece for client A.",
		Category:    "Film",
		ImageURL:    "/img.jpg",
		TrailerURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		ClientName:  "Client A",
	},
	{
		Title:       "Project Two",
		Description: "Award-winning documentary for client B.",
		Category:    "Documentary",
		ImageURL:    "/img.jpg",
		TrailerURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		ClientName:  "Client B",
	},
}

// SeedResult says how many records SeedContent inserted.
type SeedResult struct {
	Services int
	Works    int
}

// SeedContent fills each collection with its defaults, but only when that
// collection is empty, so running it twice changes nothing.
func SeedContent(ctx context.Context, catalog *CatalogService, portfolio *PortfolioService) (SeedResult, error) {
	var res SeedResult

	services, err := catalog.List(ctx)
	if err != nil {
		return res, err
	}
	if len(services) == 0 {
		for _, in := range DefaultServices {
			if _, err := catalog.Create(ctx, in); err != nil {
				return res, fmt.Errorf("seeding service %q: %w", in.Title, err)
			}
			res.Services++
		}
	}

	works, err := portfolio.List(ctx)
	if err != nil {
		return res, err
	}
	if len(works) == 0 {
		for _, in := range DefaultWorks {
			if _, err := portfolio.Create(ctx, in); err != nil {
				return res, fmt.Errorf("seeding portfolio work %q: %w", in.Title, err)
			}
			res.Works++
		}
	}

	return res, nil
}
