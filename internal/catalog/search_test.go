package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSearchEmptyQuery(t *testing.T) {
	results, err := New(threePartSeries()).Search(context.Background(), "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results == nil {
		t.Error("got nil, want empty slice")
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

// Whitespace is part of the query: it is neither trimmed nor treated as
// empty.
func TestSearchWhitespaceIsLiteral(t *testing.T) {
	m := newMemStore()
	cat := m.addCategory("C", "c", "")
	s := m.addSeries(cat, "S", "s", "")
	m.addTutorial(s, "Spaced", "two-words", "hello world", t0)
	m.addTutorial(s, "Glued", "glued", "helloworld", t0.Add(time.Hour))

	tests := []struct {
		query string
		want  []string
	}{
		{" ", []string{"two-words"}},
		{" world", []string{"two-words"}},
		{"world", []string{"two-words", "glued"}},
		{"   ", []string{}},
	}
	for _, tt := range tests {
		results, err := New(m).Search(context.Background(), tt.query)
		if err != nil {
			t.Fatalf("Search(%q): %v", tt.query, err)
		}
		got := []string{}
		for _, r := range results {
			got = append(got, r.Slug)
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("Search(%q): got %v, want %v", tt.query, got, tt.want)
		}
	}
}

// A blank but non-empty query still reaches the store.
func TestSearchBlankQueryScans(t *testing.T) {
	m := newMemStore()
	m.err = errStore

	if _, err := New(m).Search(context.Background(), "   "); !errors.Is(err, errStore) {
		t.Errorf("Search(\"   \"): got %v, want %v", err, errStore)
	}
}

// TestSearchEmptyQuerySkipsStore proves that no scan happens for an empty
// query: the store would fail if it were called.
func TestSearchEmptyQuerySkipsStore(t *testing.T) {
	m := newMemStore()
	m.err = errStore

	if _, err := New(m).Search(context.Background(), ""); err != nil {
		t.Errorf("Search(\"\"): got %v, want nil", err)
	}
}

func TestSearchOrderByKind(t *testing.T) {
	m := newMemStore()
	cat := m.addCategory("Python Programming", "python", "All about python")
	basics := m.addSeries(cat, "Python Basics", "python-basics", "Start here")
	m.addTutorial(basics, "Intro to Python", "python-intro", "Install python.", t0)
	m.addTutorial(basics, "Loops", "python-loops", "for loops in Python", t0.Add(time.Hour))

	results, err := New(m).Search(context.Background(), "PYTHON")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	want := []struct {
		kind Kind
		slug string
	}{
		{KindTutorial, "python-intro"},
		{KindTutorial, "python-loops"},
		{KindCategory, "python"},
		{KindSeries, "python-intro"},
	}
	if len(results) != len(want) {
		t.Fatalf("results: got %d, want %d (%+v)", len(results), len(want), results)
	}
	for i, w := range want {
		if results[i].Kind != w.kind || results[i].Slug != w.slug {
			t.Errorf("results[%d]: got %s/%s, want %s/%s", i, results[i].Kind, results[i].Slug, w.kind, w.slug)
		}
	}

	if results[2].Title != "Python Programming" || results[2].Summary != "All about python" {
		t.Errorf("category result: got %+v", results[2])
	}
	if results[3].Title != "Python Basics" || results[3].Summary != "Start here" {
		t.Errorf("series result: got %+v", results[3])
	}
}

func TestSearchMatchesContent(t *testing.T) {
	m := newMemStore()
	cat := m.addCategory("C", "c", "")
	s := m.addSeries(cat, "S", "s", "")
	m.addTutorial(s, "Untitled", "untitled", "Deep inside the body is a Needle.", t0)

	results, err := New(m).Search(context.Background(), "needle")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Slug != "untitled" {
		t.Errorf("results: got %+v, want the untitled tutorial", results)
	}
}

func TestSearchSeriesWithoutTutorialsOmitted(t *testing.T) {
	m := newMemStore()
	cat := m.addCategory("Other", "other", "")
	m.addSeries(cat, "Rust Basics", "rust-basics", "")

	results, err := New(m).Search(context.Background(), "rust")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results: got %+v, want none", results)
	}
}

func TestSearchNoDeduplicationAcrossKinds(t *testing.T) {
	m := newMemStore()
	cat := m.addCategory("Go", "go", "go things")
	s := m.addSeries(cat, "Go Tour", "go-tour", "")
	m.addTutorial(s, "Go Hello", "go-hello", "", t0)

	results, err := New(m).Search(context.Background(), "go")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// Tutorial and series both point at go-hello; both are kept.
	var hello int
	for _, r := range results {
		if r.Slug == "go-hello" {
			hello++
		}
	}
	if hello != 2 {
		t.Errorf("go-hello results: got %d, want 2", hello)
	}
}

func TestSearchTutorialSummaryTruncation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"exactly 150", "q" + strings.Repeat("x", 149), "q" + strings.Repeat("x", 149)},
		{"151 truncated", "q" + strings.Repeat("x", 150), "q" + strings.Repeat("x", 149) + "..."},
		{"short", "q short", "q short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMemStore()
			cat := m.addCategory("C", "c", "")
			s := m.addSeries(cat, "S", "s", "")
			m.addTutorial(s, "T", "t", tt.content, t0)

			results, err := New(m).Search(context.Background(), "q")
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(results) != 1 {
				t.Fatalf("results: got %d, want 1", len(results))
			}
			if results[0].Summary != tt.want {
				t.Errorf("Summary: got %q (len %d), want len %d", results[0].Summary, len(results[0].Summary), len(tt.want))
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", ""},
		{"149 chars", strings.Repeat("a", 149), strings.Repeat("a", 149)},
		{"150 chars", strings.Repeat("a", 150), strings.Repeat("a", 150)},
		{"151 chars", strings.Repeat("a", 151), strings.Repeat("a", 150) + "..."},
		{"long", strings.Repeat("a", 1000), strings.Repeat("a", 150) + "..."},
		// Characters, not bytes: 150 two-byte runes are not truncated.
		{"150 multibyte", strings.Repeat("é", 150), strings.Repeat("é", 150)},
		{"151 multibyte", strings.Repeat("é", 151), strings.Repeat("é", 150) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.content); got != tt.want {
				t.Errorf("Summarize: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchStoreError(t *testing.T) {
	m := threePartSeries()
	m.err = errStore

	_, err := New(m).Search(context.Background(), "part")
	if !errors.Is(err, errStore) {
		t.Errorf("err: got %v, want wrapped errStore", err)
	}
}
