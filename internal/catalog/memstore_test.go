package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"tutorialsite/internal/models"
)

// memStore is an in-memory Store used by the catalog tests. Lists are
// returned in insertion order except where the interface promises more.
type memStore struct {
	categories []models.Category
	series     []models.Series
	tutorials  []models.Tutorial

	// err, when set, is returned by every method.
	err error
}

var errStore = errors.New("store unavailable")

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) addCategory(name, slug, summary string) models.Category {
	c := models.Category{ID: uuid.New(), Name: name, Slug: slug, Summary: summary}
	m.categories = append(m.categories, c)
	return c
}

func (m *memStore) addSeries(cat models.Category, name, slug, summary string) models.Series {
	s := models.Series{ID: uuid.New(), Name: name, Slug: slug, Summary: summary, CategoryID: cat.ID}
	m.series = append(m.series, s)
	return s
}

func (m *memStore) addTutorial(s models.Series, title, slug, content string, published time.Time) models.Tutorial {
	t := models.Tutorial{
		ID:          uuid.New(),
		Title:       title,
		Slug:        slug,
		Content:     content,
		PublishedAt: published,
		SeriesID:    s.ID,
		CreatedAt:   published,
	}
	m.tutorials = append(m.tutorials, t)
	return t
}

func (m *memStore) CategoryBySlug(_ context.Context, slug string) (*models.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) TutorialBySlug(_ context.Context, slug string) (*models.Tutorial, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, t := range m.tutorials {
		if t.Slug == slug {
			return &t, nil
		}
	}
	return nil, nil
}

func (m *memStore) SeriesByID(_ context.Context, id uuid.UUID) (*models.Series, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, s := range m.series {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memStore) SeriesInCategory(_ context.Context, categoryID uuid.UUID) ([]models.Series, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Series
	for _, s := range m.series {
		if s.CategoryID == categoryID {
			out = append(out, s)
		}
	}
	return out, nil
}

// TutorialsInSeries deliberately returns tutorials newest first so the
// tests prove the service sorts for itself.
func (m *memStore) TutorialsInSeries(_ context.Context, seriesID uuid.UUID) ([]models.Tutorial, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Tutorial
	for _, t := range m.tutorials {
		if t.SeriesID == seriesID {
			out = append(out, t)
		}
	}
	slices.Reverse(out)
	return out, nil
}

func (m *memStore) FirstTutorial(ctx context.Context, seriesID uuid.UUID) (*models.Tutorial, error) {
	all, err := m.TutorialsInSeries(ctx, seriesID)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	first := slices.MinFunc(all, models.CompareTutorials)
	return &first, nil
}

func contains(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (m *memStore) SearchTutorials(_ context.Context, q string) ([]models.Tutorial, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Tutorial
	for _, t := range m.tutorials {
		if contains(t.Title, q) || contains(t.Content, q) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) SearchCategories(_ context.Context, q string) ([]models.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Category
	for _, c := range m.categories {
		if contains(c.Name, q) || contains(c.Summary, q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) SearchSeries(_ context.Context, q string) ([]models.Series, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Series
	for _, s := range m.series {
		if contains(s.Name, q) || contains(s.Summary, q) {
			out = append(out, s)
		}
	}
	return out, nil
}

var _ Store = (*memStore)(nil)
