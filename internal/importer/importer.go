// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package importer loads catalog content (categories, series and
// tutorials) from YAML documents into the database. It backs the
// `tutorialctl import` command and the development seed.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tutorialsite/internal/models"
	"tutorialsite/internal/slug"
	"tutorialsite/internal/store"
)

// Document is the top level of an import file.
type Document struct {
	Categories []CategoryDoc `yaml:"categories"`
}

// CategoryDoc describes one category and the series it owns.
type CategoryDoc struct {
	Name    string      `yaml:"name"`
	Slug    string      `yaml:"slug"`
	Summary string      `yaml:"summary"`
	Series  []SeriesDoc `yaml:"series"`
}

// SeriesDoc describes one series and its tutorials, in reading order.
type SeriesDoc struct {
	Name      string        `yaml:"name"`
	Slug      string        `yaml:"slug"`
	Summary   string        `yaml:"summary"`
	Tutorials []TutorialDoc `yaml:"tutorials"`
}

// TutorialDoc describes one tutorial. When Published is omitted the
// importer spaces tutorials one minute apart in file order.
type TutorialDoc struct {
	Title     string    `yaml:"title"`
	Slug      string    `yaml:"slug"`
	Published time.Time `yaml:"published"`
	Content   string    `yaml:"content"`
}

// Result counts what an import wrote.
type Result struct {
	Categories int
	Series     int
	Tutorials  int
}

// ErrSlugConflict is returned when a category and a tutorial would share a
// slug. Both live in the same URL namespace.
var ErrSlugConflict = errors.New("slug used by both a category and a tutorial")

// ErrReservedSlug is returned when a category or tutorial would take a slug
// that a fixed site route already answers.
var ErrReservedSlug = errors.New("slug reserved for a site route")

// Parse decodes an import document, fills in missing slugs from names and
// titles, and checks the document for internal consistency.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("decode import file: %w", err)
	}

	doc.normalize()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) normalize() {
	for i := range d.Categories {
		c := &d.Categories[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Slug == "" {
			c.Slug = slug.Generate(c.Name)
		}
		for j := range c.Series {
			s := &c.Series[j]
			s.Name = strings.TrimSpace(s.Name)
			if s.Slug == "" {
				s.Slug = slug.Generate(s.Name)
			}
			for k := range s.Tutorials {
				t := &s.Tutorials[k]
				t.Title = strings.TrimSpace(t.Title)
				if t.Slug == "" {
					t.Slug = slug.Generate(t.Title)
				}
			}
		}
	}
}

// Validate checks required fields, slug syntax and slug uniqueness within
// the document.
func (d *Document) Validate() error {
	categories := map[string]bool{}
	series := map[string]bool{}
	tutorials := map[string]bool{}

	check := func(kind, name, s string, seen map[string]bool) error {
		if name == "" {
			return fmt.Errorf("%s %q: name is required", kind, s)
		}
		if !slug.Valid(s) {
			return fmt.Errorf("%s %q: invalid slug %q", kind, name, s)
		}
		if seen[s] {
			return fmt.Errorf("%s %q: duplicate slug %q", kind, name, s)
		}
		seen[s] = true
		return nil
	}

	for _, c := range d.Categories {
		if err := check("category", c.Name, c.Slug, categories); err != nil {
			return err
		}
		if slug.Reserved(c.Slug) {
			return fmt.Errorf("%w: category %q", ErrReservedSlug, c.Slug)
		}
		for _, s := range c.Series {
			if err := check("series", s.Name, s.Slug, series); err != nil {
				return err
			}
			for _, t := range s.Tutorials {
				if err := check("tutorial", t.Title, t.Slug, tutorials); err != nil {
					return err
				}
				if slug.Reserved(t.Slug) {
					return fmt.Errorf("%w: tutorial %q", ErrReservedSlug, t.Slug)
				}
			}
		}
	}

	for s := range tutorials {
		if categories[s] {
			return fmt.Errorf("%w: %q", ErrSlugConflict, s)
		}
	}
	return nil
}

// Importer writes documents into the catalog stores.
type Importer struct {
	catalog *store.Catalog
	now     func() time.Time
}

// New creates an Importer over the given catalog stores.
func New(catalog *store.Catalog) *Importer {
	return &Importer{catalog: catalog, now: time.Now}
}

// Import upserts every category, series and tutorial in doc inside one
// transaction, so a failed import leaves the catalog untouched. Existing
// rows are matched by slug and updated in place. A tutorial may not take a
// slug that an existing category already uses, and vice versa.
func (im *Importer) Import(ctx context.Context, doc *Document) (*Result, error) {
	var res *Result
	err := im.catalog.InTx(ctx, func(tx *store.Catalog) error {
		var err error
		res, err = im.write(ctx, tx, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (im *Importer) write(ctx context.Context, tx *store.Catalog, doc *Document) (*Result, error) {
	if err := checkConflicts(ctx, tx, doc); err != nil {
		return nil, err
	}

	res := &Result{}
	base := im.now().Truncate(time.Second)

	for _, cd := range doc.Categories {
		cat, err := tx.Categories.Upsert(ctx, &models.Category{
			Name:    cd.Name,
			Slug:    cd.Slug,
			Summary: cd.Summary,
		})
		if err != nil {
			return nil, err
		}
		res.Categories++

		for _, sd := range cd.Series {
			sr, err := tx.Series.Upsert(ctx, &models.Series{
				Name:       sd.Name,
				Slug:       sd.Slug,
				Summary:    sd.Summary,
				CategoryID: cat.ID,
			})
			if err != nil {
				return nil, err
			}
			res.Series++

			for i, td := range sd.Tutorials {
				published := td.Published
				if published.IsZero() {
					published = base.Add(time.Duration(i) * time.Minute)
				}
				if _, err := tx.Tutorials.Upsert(ctx, &models.Tutorial{
					Title:       td.Title,
					Slug:        td.Slug,
					Content:     td.Content,
					PublishedAt: published,
					SeriesID:    sr.ID,
				}); err != nil {
					return nil, err
				}
				res.Tutorials++
			}
		}
		slog.Info("imported category", "slug", cat.Slug, "series", len(cd.Series))
	}

	return res, nil
}

func checkConflicts(ctx context.Context, tx *store.Catalog, doc *Document) error {
	for _, cd := range doc.Categories {
		t, err := tx.Tutorials.FindBySlug(ctx, cd.Slug)
		if err != nil {
			return err
		}
		if t != nil {
			return fmt.Errorf("%w: category %q matches tutorial %q", ErrSlugConflict, cd.Slug, t.Title)
		}
		for _, sd := range cd.Series {
			for _, td := range sd.Tutorials {
				c, err := tx.Categories.FindBySlug(ctx, td.Slug)
				if err != nil {
					return err
				}
				if c != nil {
					return fmt.Errorf("%w: tutorial %q matches category %q", ErrSlugConflict, td.Slug, c.Name)
				}
			}
		}
	}
	return nil
}
