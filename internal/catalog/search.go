// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// Kind labels the entity a search result points at.
type Kind string

const (
	KindTutorial Kind = "Tutorial"
	KindCategory Kind = "Category"
	KindSeries   Kind = "Series"
)

// summaryLen is the number of characters of tutorial content kept in a
// search result summary.
const summaryLen = 150

// Result is a single search hit. Slug is always a path that Resolve
// understands: a tutorial slug, a category slug, or the first tutorial of
// a series.
type Result struct {
	Title   string
	Slug    string
	Summary string
	Kind    Kind
}

// Search returns tutorials, then categories, then series whose text
// contains query, ignoring case. An empty query returns no results.
func (s *Service) Search(ctx context.Context, query string) ([]Result, error) {
	if query == "" {
		return []Result{}, nil
	}

	results := []Result{}

	tutorials, err := s.store.SearchTutorials(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search tutorials: %w", err)
	}
	for _, t := range tutorials {
		results = append(results, Result{
			Title:   t.Title,
			Slug:    t.Slug,
			Summary: Summarize(t.Content),
			Kind:    KindTutorial,
		})
	}

	categories, err := s.store.SearchCategories(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	for _, c := range categories {
		results = append(results, Result{
			Title:   c.Name,
			Slug:    c.Slug,
			Summary: c.Summary,
			Kind:    KindCategory,
		})
	}

	series, err := s.store.SearchSeries(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search series: %w", err)
	}
	for _, sr := range series {
		first, err := s.store.FirstTutorial(ctx, sr.ID)
		if err != nil {
			return nil, fmt.Errorf("first tutorial of %q: %w", sr.Slug, err)
		}
		if first == nil {
			continue
		}
		results = append(results, Result{
			Title:   sr.Name,
			Slug:    first.Slug,
			Summary: sr.Summary,
			Kind:    KindSeries,
		})
	}

	return results, nil
}

// Summarize returns the first 150 characters of content followed by "..."
// when content is longer than that, and content unchanged otherwise.
func Summarize(content string) string {
	if utf8.RuneCountInString(content) <= summaryLen {
		return content
	}
	return string([]rune(content)[:summaryLen]) + "..."
}
