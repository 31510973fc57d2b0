// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tutorial is a single part of a series. Its slug is globally unique and
// is the identifier used in public URLs.
type Tutorial struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Content     string    `json:"content"`
	PublishedAt time.Time `json:"published_at"`
	SeriesID    uuid.UUID `json:"series_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Before reports whether t sorts before o in series order: published_at,
// then created_at, then slug. Slugs are unique, so the order is total.
func (t *Tutorial) Before(o *Tutorial) bool {
	if !t.PublishedAt.Equal(o.PublishedAt) {
		return t.PublishedAt.Before(o.PublishedAt)
	}
	if !t.CreatedAt.Equal(o.CreatedAt) {
		return t.CreatedAt.Before(o.CreatedAt)
	}
	return strings.Compare(t.Slug, o.Slug) < 0
}

// CompareTutorials orders two tutorials for slices.SortStableFunc.
func CompareTutorials(a, b Tutorial) int {
	switch {
	case a.Before(&b):
		return -1
	case b.Before(&a):
		return 1
	default:
		return 0
	}
}
