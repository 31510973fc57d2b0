// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tutorialsite/internal/models"
)

// TutorialStore manages tutorials in the database.
type TutorialStore struct {
	db DBTX
}

// NewTutorialStore returns a new TutorialStore.
func NewTutorialStore(db DBTX) *TutorialStore {
	return &TutorialStore{db: db}
}

const tutorialColumns = `id, title, slug, content, published_at, series_id, created_at`

// seriesOrder is the total order of tutorials within a series. slug is
// unique, so no two rows compare equal. The slug is compared bytewise to
// agree with models.CompareTutorials whatever the database collation.
const seriesOrder = `published_at, created_at, slug COLLATE "C"`

func scanTutorial(scanner interface{ Scan(...any) error }) (*models.Tutorial, error) {
	var t models.Tutorial
	err := scanner.Scan(&t.ID, &t.Title, &t.Slug, &t.Content, &t.PublishedAt, &t.SeriesID, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindBySlug retrieves a tutorial by its slug. Returns nil if not found.
func (s *TutorialStore) FindBySlug(ctx context.Context, slug string) (*models.Tutorial, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tutorialColumns+` FROM tutorials WHERE slug = $1`, slug)
	t, err := scanTutorial(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tutorial by slug: %w", err)
	}
	return t, nil
}

// ListBySeries returns every tutorial of a series in series order.
func (s *TutorialStore) ListBySeries(ctx context.Context, seriesID uuid.UUID) ([]models.Tutorial, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tutorialColumns+`
		FROM tutorials
		WHERE series_id = $1
		ORDER BY `+seriesOrder, seriesID)
	if err != nil {
		return nil, fmt.Errorf("list tutorials by series: %w", err)
	}
	defer rows.Close()
	return collectTutorials(rows)
}

// First returns the earliest tutorial of a series, or nil when the series
// has none.
func (s *TutorialStore) First(ctx context.Context, seriesID uuid.UUID) (*models.Tutorial, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+tutorialColumns+`
		FROM tutorials
		WHERE series_id = $1
		ORDER BY `+seriesOrder+`
		LIMIT 1`, seriesID)
	t, err := scanTutorial(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first tutorial: %w", err)
	}
	return t, nil
}

// Search returns tutorials whose title or content contains query,
// ignoring case.
func (s *TutorialStore) Search(ctx context.Context, query string) ([]models.Tutorial, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tutorialColumns+`
		FROM tutorials
		WHERE title ILIKE $1 OR content ILIKE $1
		ORDER BY `+seriesOrder, likePattern(query))
	if err != nil {
		return nil, fmt.Errorf("search tutorials: %w", err)
	}
	defer rows.Close()
	return collectTutorials(rows)
}

// Upsert inserts a tutorial or, when the slug exists, updates it in place.
// A zero PublishedAt is replaced with the current time.
func (s *TutorialStore) Upsert(ctx context.Context, t *models.Tutorial) (*models.Tutorial, error) {
	if t.PublishedAt.IsZero() {
		t.PublishedAt = time.Now()
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO tutorials (title, slug, content, published_at, series_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title, content = EXCLUDED.content,
			published_at = EXCLUDED.published_at, series_id = EXCLUDED.series_id
		RETURNING `+tutorialColumns,
		t.Title, t.Slug, t.Content, t.PublishedAt, t.SeriesID,
	)
	result, err := scanTutorial(row)
	if err != nil {
		return nil, fmt.Errorf("upsert tutorial: %w", err)
	}
	return result, nil
}

// FindByID retrieves a tutorial by ID. Returns nil if not found.
func (s *TutorialStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Tutorial, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tutorialColumns+` FROM tutorials WHERE id = $1`, id)
	t, err := scanTutorial(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tutorial by id: %w", err)
	}
	return t, nil
}

// List returns every tutorial, newest first.
func (s *TutorialStore) List(ctx context.Context) ([]models.Tutorial, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tutorialColumns+`
		FROM tutorials
		ORDER BY published_at DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tutorials: %w", err)
	}
	defer rows.Close()
	return collectTutorials(rows)
}

// Update rewrites the tutorial with t.ID. Returns nil if no such tutorial
// exists.
func (s *TutorialStore) Update(ctx context.Context, t *models.Tutorial) (*models.Tutorial, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE tutorials SET title = $1, slug = $2, content = $3, published_at = $4, series_id = $5
		WHERE id = $6
		RETURNING `+tutorialColumns,
		t.Title, t.Slug, t.Content, t.PublishedAt, t.SeriesID, t.ID,
	)
	result, err := scanTutorial(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update tutorial: %w", err)
	}
	return result, nil
}

// Delete removes a tutorial by ID.
func (s *TutorialStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tutorials WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete tutorial: %w", err)
	}
	return nil
}

// Count returns the number of tutorials.
func (s *TutorialStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tutorials`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tutorials: %w", err)
	}
	return n, nil
}

func collectTutorials(rows *sql.Rows) ([]models.Tutorial, error) {
	var items []models.Tutorial
	for rows.Next() {
		t, err := scanTutorial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tutorial: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}
