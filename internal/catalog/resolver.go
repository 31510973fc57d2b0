// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"tutorialsite/internal/models"
)

// PageKind tells which variant of Page is populated.
type PageKind int

const (
	PageCategory PageKind = iota + 1
	PageTutorial
)

// Page is the result of resolving a top-level slug. Exactly one of
// Category or Tutorial is set, according to Kind.
type Page struct {
	Kind     PageKind
	Category *CategoryPage
	Tutorial *Navigation
}

// CategoryPage lists the series of a category with a link to the first
// part of each.
type CategoryPage struct {
	Category models.Category
	Parts    []SeriesPart
}

// SeriesPart pairs a series with the slug of its first tutorial.
type SeriesPart struct {
	Series    models.Series
	FirstSlug string
}

// Resolve interprets slug as a category first and a tutorial second.
// If a category and a tutorial ever share a slug, the category wins.
func (s *Service) Resolve(ctx context.Context, slug string) (*Page, error) {
	cat, err := s.store.CategoryBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	if cat != nil {
		cp, err := s.categoryPage(ctx, cat)
		if err != nil {
			return nil, err
		}
		return &Page{Kind: PageCategory, Category: cp}, nil
	}

	t, err := s.store.TutorialBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("resolve tutorial: %w", err)
	}
	if t == nil {
		return nil, ErrNotFound
	}
	nav, err := s.navigate(ctx, t)
	if err != nil {
		return nil, err
	}
	return &Page{Kind: PageTutorial, Tutorial: nav}, nil
}

// categoryPage maps every series of cat to its first tutorial. Series
// without tutorials have no first part and are left out.
func (s *Service) categoryPage(ctx context.Context, cat *models.Category) (*CategoryPage, error) {
	series, err := s.store.SeriesInCategory(ctx, cat.ID)
	if err != nil {
		return nil, fmt.Errorf("list category series: %w", err)
	}

	cp := &CategoryPage{Category: *cat}
	for _, sr := range series {
		first, err := s.store.FirstTutorial(ctx, sr.ID)
		if err != nil {
			return nil, fmt.Errorf("first tutorial of %q: %w", sr.Slug, err)
		}
		if first == nil {
			slog.Debug("series has no tutorials, omitted", "category", cat.Slug, "series", sr.Slug)
			continue
		}
		cp.Parts = append(cp.Parts, SeriesPart{Series: sr, FirstSlug: first.Slug})
	}
	return cp, nil
}
