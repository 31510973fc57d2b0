// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"tutorialsite/internal/database"
	"tutorialsite/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "tutorialsite")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "tutorialsite")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanCategories removes test categories by slug. Series and tutorials
// go with them through the cascading foreign keys.
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", slug)
	}
}

// cleanMessages removes test contact messages by email.
func cleanMessages(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM contact_messages WHERE email = $1", email)
	}
}

// seedSeries creates a category with a single series and returns both.
func seedSeries(t *testing.T, c *Catalog, catSlug, seriesSlug string) (*models.Category, *models.Series) {
	t.Helper()
	ctx := context.Background()

	cat, err := c.Categories.Upsert(ctx, &models.Category{Name: "Cat " + catSlug, Slug: catSlug, Summary: "test"})
	if err != nil {
		t.Fatalf("Upsert category: %v", err)
	}
	sr, err := c.Series.Upsert(ctx, &models.Series{
		Name: "Series " + seriesSlug, Slug: seriesSlug, Summary: "test", CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("Upsert series: %v", err)
	}
	return cat, sr
}

// addTutorial upserts a tutorial into sr.
func addTutorial(t *testing.T, c *Catalog, sr *models.Series, slug string, published time.Time) *models.Tutorial {
	t.Helper()
	tut, err := c.Tutorials.Upsert(context.Background(), &models.Tutorial{
		Title: "Tutorial " + slug, Slug: slug, Content: "<p>" + slug + "</p>",
		PublishedAt: published, SeriesID: sr.ID,
	})
	if err != nil {
		t.Fatalf("Upsert tutorial %s: %v", slug, err)
	}
	return tut
}
