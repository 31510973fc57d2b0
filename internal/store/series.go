// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"tutorialsite/internal/models"
)

// SeriesStore manages tutorial series in the database.
type SeriesStore struct {
	db DBTX
}

// NewSeriesStore returns a new SeriesStore.
func NewSeriesStore(db DBTX) *SeriesStore {
	return &SeriesStore{db: db}
}

const seriesColumns = `id, name, slug, summary, category_id, created_at`

func scanSeries(scanner interface{ Scan(...any) error }) (*models.Series, error) {
	var s models.Series
	if err := scanner.Scan(&s.ID, &s.Name, &s.Slug, &s.Summary, &s.CategoryID, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByID retrieves a series by ID. Returns nil if not found.
func (s *SeriesStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Series, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+seriesColumns+` FROM series WHERE id = $1`, id)
	sr, err := scanSeries(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find series by id: %w", err)
	}
	return sr, nil
}

// FindBySlug retrieves a series by slug. Returns nil if not found.
func (s *SeriesStore) FindBySlug(ctx context.Context, slug string) (*models.Series, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+seriesColumns+` FROM series WHERE slug = $1`, slug)
	sr, err := scanSeries(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find series by slug: %w", err)
	}
	return sr, nil
}

// ListByCategory returns the series of a category ordered by name.
func (s *SeriesStore) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Series, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+seriesColumns+`
		FROM series
		WHERE category_id = $1
		ORDER BY name
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list series by category: %w", err)
	}
	defer rows.Close()
	return collectSeries(rows)
}

// Search returns series whose name or summary contains query, ignoring case.
func (s *SeriesStore) Search(ctx context.Context, query string) ([]models.Series, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+seriesColumns+`
		FROM series
		WHERE name ILIKE $1 OR summary ILIKE $1
		ORDER BY name
	`, likePattern(query))
	if err != nil {
		return nil, fmt.Errorf("search series: %w", err)
	}
	defer rows.Close()
	return collectSeries(rows)
}

// Upsert inserts a series or, when the slug exists, updates it in place.
func (s *SeriesStore) Upsert(ctx context.Context, sr *models.Series) (*models.Series, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO series (name, slug, summary, category_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name, summary = EXCLUDED.summary, category_id = EXCLUDED.category_id
		RETURNING `+seriesColumns,
		sr.Name, sr.Slug, sr.Summary, sr.CategoryID,
	)
	result, err := scanSeries(row)
	if err != nil {
		return nil, fmt.Errorf("upsert series: %w", err)
	}
	return result, nil
}

// List returns every series ordered by name.
func (s *SeriesStore) List(ctx context.Context) ([]models.Series, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+seriesColumns+` FROM series ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()
	return collectSeries(rows)
}

// Update rewrites the series with sr.ID. Returns nil if no such series
// exists.
func (s *SeriesStore) Update(ctx context.Context, sr *models.Series) (*models.Series, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE series SET name = $1, slug = $2, summary = $3, category_id = $4
		WHERE id = $5
		RETURNING `+seriesColumns,
		sr.Name, sr.Slug, sr.Summary, sr.CategoryID, sr.ID,
	)
	result, err := scanSeries(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update series: %w", err)
	}
	return result, nil
}

// Delete removes a series together with its tutorials.
func (s *SeriesStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM series WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete series: %w", err)
	}
	return nil
}

// Count returns the number of series.
func (s *SeriesStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM series`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count series: %w", err)
	}
	return n, nil
}

func collectSeries(rows *sql.Rows) ([]models.Series, error) {
	var items []models.Series
	for rows.Next() {
		sr, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		items = append(items, *sr)
	}
	return items, rows.Err()
}
