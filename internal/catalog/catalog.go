// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog implements the read side of the tutorial catalog: series
// navigation, slug resolution for category and tutorial pages, and keyword
// search across tutorials, categories and series. It depends only on the
// Store interface, so any persistence layer can back it.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"tutorialsite/internal/models"
)

// ErrNotFound is returned when a slug matches no category or tutorial.
var ErrNotFound = errors.New("catalog: not found")

// Store is the content store the catalog reads from. Single-record lookups
// return (nil, nil) when the record does not exist.
type Store interface {
	CategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	TutorialBySlug(ctx context.Context, slug string) (*models.Tutorial, error)
	SeriesByID(ctx context.Context, id uuid.UUID) (*models.Series, error)

	// SeriesInCategory returns every series owned by a category.
	SeriesInCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Series, error)
	// TutorialsInSeries returns every tutorial of a series. Callers must not
	// rely on the order.
	TutorialsInSeries(ctx context.Context, seriesID uuid.UUID) ([]models.Tutorial, error)
	// FirstTutorial returns the earliest tutorial of a series in series
	// order, or nil when the series is empty.
	FirstTutorial(ctx context.Context, seriesID uuid.UUID) (*models.Tutorial, error)

	// Case-insensitive substring matches. Tutorials match on title or
	// content, categories and series on name or summary.
	SearchTutorials(ctx context.Context, query string) ([]models.Tutorial, error)
	SearchCategories(ctx context.Context, query string) ([]models.Category, error)
	SearchSeries(ctx context.Context, query string) ([]models.Series, error)
}

// Service answers navigation, resolution and search requests.
type Service struct {
	store Store
}

// New returns a Service reading from store.
func New(store Store) *Service {
	return &Service{store: store}
}
