// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"
	"slices"

	"tutorialsite/internal/models"
)

// Navigation is everything a tutorial page needs: the tutorial, its series,
// the full ordered sidebar and the neighbours of the tutorial in it.
type Navigation struct {
	Tutorial models.Tutorial
	Series   *models.Series
	Sidebar  []models.Tutorial
	Index    int // zero-based rank of Tutorial in Sidebar
	Previous *models.Tutorial
	Next     *models.Tutorial
}

// HasNext reports whether the tutorial has a following part.
func (n *Navigation) HasNext() bool {
	return n.Next != nil
}

// Locate finds a tutorial by slug and places it within its series.
func (s *Service) Locate(ctx context.Context, slug string) (*Navigation, error) {
	t, err := s.store.TutorialBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("locate tutorial: %w", err)
	}
	if t == nil {
		return nil, ErrNotFound
	}
	return s.navigate(ctx, t)
}

// navigate builds the Navigation for a tutorial that is known to exist.
func (s *Service) navigate(ctx context.Context, t *models.Tutorial) (*Navigation, error) {
	sidebar, err := s.store.TutorialsInSeries(ctx, t.SeriesID)
	if err != nil {
		return nil, fmt.Errorf("list series tutorials: %w", err)
	}
	slices.SortStableFunc(sidebar, models.CompareTutorials)

	idx := slices.IndexFunc(sidebar, func(o models.Tutorial) bool { return o.Slug == t.Slug })
	if idx < 0 {
		return nil, fmt.Errorf("tutorial %q missing from series %s", t.Slug, t.SeriesID)
	}

	series, err := s.store.SeriesByID(ctx, t.SeriesID)
	if err != nil {
		return nil, fmt.Errorf("find series: %w", err)
	}

	nav := &Navigation{
		Tutorial: sidebar[idx],
		Series:   series,
		Sidebar:  sidebar,
		Index:    idx,
	}
	if idx > 0 {
		nav.Previous = &sidebar[idx-1]
	}
	if idx < len(sidebar)-1 {
		nav.Next = &sidebar[idx+1]
	}
	return nav, nil
}
