package catalog

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestResolveCategory(t *testing.T) {
	m := newMemStore()
	cat := m.addCategory("intro", "intro-cat", "Getting started")
	basics := m.addSeries(cat, "basics", "basics", "")
	m.addTutorial(basics, "Setup", "intro-setup", "", t0)
	m.addTutorial(basics, "Variables", "intro-variables", "", t0.Add(time.Hour))

	page, err := New(m).Resolve(context.Background(), "intro-cat")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if page.Kind != PageCategory {
		t.Fatalf("Kind: got %v, want PageCategory", page.Kind)
	}
	if page.Tutorial != nil {
		t.Error("Tutorial should be nil for a category page")
	}

	parts := page.Category.Parts
	if len(parts) != 1 {
		t.Fatalf("Parts: got %d, want 1", len(parts))
	}
	if parts[0].Series.Name != "basics" || parts[0].FirstSlug != "intro-setup" {
		t.Errorf("part: got %q -> %q, want basics -> intro-setup", parts[0].Series.Name, parts[0].FirstSlug)
	}
}

// TestResolveCategoryFirstIsChronological inserts the later part first and
// expects the earlier one to be reported.
func TestResolveCategoryFirstIsChronological(t *testing.T) {
	m := newMemStore()
	cat := m.addCategory("Web", "web", "")
	s := m.addSeries(cat, "Django", "django", "")
	m.addTutorial(s, "Views", "django-views", "", t0.Add(48*time.Hour))
	m.addTutorial(s, "Install", "django-install", "", t0)

	page, err := New(m).Resolve(context.Background(), "web")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := page.Category.Parts[0].FirstSlug; got != "django-install" {
		t.Errorf("FirstSlug: got %q, want django-install", got)
	}
}

func TestResolveCategoryOmitsEmptySeries(t *testing.T) {
	m := newMemStore()
	cat := m.addCategory("Data", "data", "")
	full := m.addSeries(cat, "Pandas", "pandas", "")
	m.addSeries(cat, "Empty", "empty", "")
	m.addTutorial(full, "Frames", "pandas-frames", "", t0)

	page, err := New(m).Resolve(context.Background(), "data")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(page.Category.Parts) != 1 {
		t.Fatalf("Parts: got %d, want 1", len(page.Category.Parts))
	}
	if page.Category.Parts[0].Series.Slug != "pandas" {
		t.Errorf("kept series: got %q, want pandas", page.Category.Parts[0].Series.Slug)
	}
}

func TestResolveCategoryWithoutSeries(t *testing.T) {
	m := newMemStore()
	m.addCategory("Lonely", "lonely", "")

	page, err := New(m).Resolve(context.Background(), "lonely")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if page.Kind != PageCategory || len(page.Category.Parts) != 0 {
		t.Errorf("got kind %v with %d parts, want empty category page", page.Kind, len(page.Category.Parts))
	}
}

func TestResolveTutorial(t *testing.T) {
	page, err := New(threePartSeries()).Resolve(context.Background(), "b")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if page.Kind != PageTutorial {
		t.Fatalf("Kind: got %v, want PageTutorial", page.Kind)
	}
	nav := page.Tutorial
	if nav.Tutorial.Slug != "b" || nav.Previous.Slug != "a" || nav.Next.Slug != "c" {
		t.Errorf("navigation: got %q prev=%q next=%q", nav.Tutorial.Slug, nav.Previous.Slug, nav.Next.Slug)
	}
}

func TestResolveNotFound(t *testing.T) {
	_, err := New(threePartSeries()).Resolve(context.Background(), "nonexistent-slug")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err: got %v, want ErrNotFound", err)
	}
}

// TestResolveCategoryWinsOnCollision documents that a category shadows a
// tutorial with the same slug.
func TestResolveCategoryWinsOnCollision(t *testing.T) {
	m := newMemStore()
	cat := m.addCategory("Shared", "shared", "")
	s := m.addSeries(cat, "S", "s", "")
	m.addTutorial(s, "Shared tutorial", "shared", "", t0)

	page, err := New(m).Resolve(context.Background(), "shared")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if page.Kind != PageCategory {
		t.Errorf("Kind: got %v, want PageCategory", page.Kind)
	}
}

func TestResolveStoreError(t *testing.T) {
	m := threePartSeries()
	m.err = errStore

	_, err := New(m).Resolve(context.Background(), "programming")
	if !errors.Is(err, errStore) {
		t.Errorf("err: got %v, want wrapped errStore", err)
	}
}
