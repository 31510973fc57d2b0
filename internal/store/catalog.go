// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tutorialsite/internal/catalog"
	"tutorialsite/internal/models"
)

// DBTX is the part of *sql.DB and *sql.Tx the catalog stores need, so
// the same stores run inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Catalog adapts the category, series and tutorial stores to the
// catalog.Store interface.
type Catalog struct {
	Categories *CategoryStore
	Series     *SeriesStore
	Tutorials  *TutorialStore

	// db is nil for a Catalog bound to a transaction.
	db *sql.DB
}

// NewCatalog builds the three catalog stores over one connection pool.
func NewCatalog(db *sql.DB) *Catalog {
	c := newCatalog(db)
	c.db = db
	return c
}

func newCatalog(db DBTX) *Catalog {
	return &Catalog{
		Categories: NewCategoryStore(db),
		Series:     NewSeriesStore(db),
		Tutorials:  NewTutorialStore(db),
	}
}

// ErrNestedTx is returned by InTx on a Catalog that is already bound to a
// transaction.
var ErrNestedTx = errors.New("catalog already in a transaction")

// InTx runs fn with a Catalog whose stores share one transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (c *Catalog) InTx(ctx context.Context, fn func(tx *Catalog) error) error {
	if c.db == nil {
		return ErrNestedTx
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newCatalog(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

var _ catalog.Store = (*Catalog)(nil)

func (c *Catalog) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return c.Categories.FindBySlug(ctx, slug)
}

func (c *Catalog) TutorialBySlug(ctx context.Context, slug string) (*models.Tutorial, error) {
	return c.Tutorials.FindBySlug(ctx, slug)
}

func (c *Catalog) SeriesByID(ctx context.Context, id uuid.UUID) (*models.Series, error) {
	return c.Series.FindByID(ctx, id)
}

func (c *Catalog) SeriesInCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Series, error) {
	return c.Series.ListByCategory(ctx, categoryID)
}

func (c *Catalog) TutorialsInSeries(ctx context.Context, seriesID uuid.UUID) ([]models.Tutorial, error) {
	return c.Tutorials.ListBySeries(ctx, seriesID)
}

func (c *Catalog) FirstTutorial(ctx context.Context, seriesID uuid.UUID) (*models.Tutorial, error) {
	return c.Tutorials.First(ctx, seriesID)
}

func (c *Catalog) SearchTutorials(ctx context.Context, query string) ([]models.Tutorial, error) {
	return c.Tutorials.Search(ctx, query)
}

func (c *Catalog) SearchCategories(ctx context.Context, query string) ([]models.Category, error) {
	return c.Categories.Search(ctx, query)
}

func (c *Catalog) SearchSeries(ctx context.Context, query string) ([]models.Series, error) {
	return c.Series.Search(ctx, query)
}
