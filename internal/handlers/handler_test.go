// handler_test.go provides shared test infrastructure: in-memory fakes for
// the public catalog handlers, and database/Valkey helpers for the auth
// and admin integration tests, which are skipped when those services are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"tutorialsite/internal/cache"
	"tutorialsite/internal/catalog"
	"tutorialsite/internal/database"
	"tutorialsite/internal/middleware"
	"tutorialsite/internal/models"
	"tutorialsite/internal/render"
	"tutorialsite/internal/session"
	"tutorialsite/internal/store"
)

var errFake = errors.New("store unavailable")

// fakeCatalog is an in-memory catalog.Store.
type fakeCatalog struct {
	categories []models.Category
	series     []models.Series
	tutorials  []models.Tutorial
	err        error
}

func (f *fakeCatalog) addCategory(name, slug, summary string) models.Category {
	c := models.Category{ID: uuid.New(), Name: name, Slug: slug, Summary: summary}
	f.categories = append(f.categories, c)
	return c
}

func (f *fakeCatalog) addSeries(c models.Category, name, slug, summary string) models.Series {
	s := models.Series{ID: uuid.New(), Name: name, Slug: slug, Summary: summary, CategoryID: c.ID}
	f.series = append(f.series, s)
	return s
}

func (f *fakeCatalog) addTutorial(s models.Series, title, slug, content string, published time.Time) models.Tutorial {
	t := models.Tutorial{
		ID:          uuid.New(),
		Title:       title,
		Slug:        slug,
		Content:     content,
		PublishedAt: published,
		CreatedAt:   published,
		SeriesID:    s.ID,
	}
	f.tutorials = append(f.tutorials, t)
	return t
}

func (f *fakeCatalog) CategoryBySlug(_ context.Context, slug string) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) TutorialBySlug(_ context.Context, slug string) (*models.Tutorial, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, t := range f.tutorials {
		if t.Slug == slug {
			return &t, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) SeriesByID(_ context.Context, id uuid.UUID) (*models.Series, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, s := range f.series {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) SeriesInCategory(_ context.Context, categoryID uuid.UUID) ([]models.Series, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Series
	for _, s := range f.series {
		if s.CategoryID == categoryID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeCatalog) TutorialsInSeries(_ context.Context, seriesID uuid.UUID) ([]models.Tutorial, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Tutorial
	for _, t := range f.tutorials {
		if t.SeriesID == seriesID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeCatalog) FirstTutorial(ctx context.Context, seriesID uuid.UUID) (*models.Tutorial, error) {
	ts, err := f.TutorialsInSeries(ctx, seriesID)
	if err != nil || len(ts) == 0 {
		return nil, err
	}
	first := slices.MinFunc(ts, models.CompareTutorials)
	return &first, nil
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (f *fakeCatalog) SearchTutorials(_ context.Context, q string) ([]models.Tutorial, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Tutorial
	for _, t := range f.tutorials {
		if contains(t.Title, q) || contains(t.Content, q) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeCatalog) SearchCategories(_ context.Context, q string) ([]models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Category
	for _, c := range f.categories {
		if contains(c.Name, q) || contains(c.Summary, q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) SearchSeries(_ context.Context, q string) ([]models.Series, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Series
	for _, s := range f.series {
		if contains(s.Name, q) || contains(s.Summary, q) {
			out = append(out, s)
		}
	}
	return out, nil
}

// List satisfies CategoryLister.
func (f *fakeCatalog) List(_ context.Context) ([]models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

// fakeInbox records contact messages.
type fakeInbox struct {
	mu       sync.Mutex
	messages []models.ContactMessage
	err      error
}

func (f *fakeInbox) Create(_ context.Context, m *models.ContactMessage) (*models.ContactMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := *m
	saved.ID = uuid.New()
	saved.CreatedAt = time.Now()
	f.messages = append(f.messages, saved)
	return &saved, nil
}

// publicEnv wires a Public handler group to in-memory fakes.
type publicEnv struct {
	Catalog *fakeCatalog
	Inbox   *fakeInbox
	Public  *Public
}

func newTestRenderer(t *testing.T, sessions *session.Store) *render.Renderer {
	t.Helper()
	rn, err := render.New(sessions, "Tutorials")
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return rn
}

func newPublicEnv(t *testing.T) *publicEnv {
	t.Helper()
	sessions := session.NewStore(nil, false)
	fc := &fakeCatalog{}
	inbox := &fakeInbox{}
	return &publicEnv{
		Catalog: fc,
		Inbox:   inbox,
		Public:  NewPublic(newTestRenderer(t, sessions), sessions, catalog.New(fc), fc, inbox),
	}
}

// --- Integration helpers ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "tutorialsite")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "tutorialsite")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for the auth and admin integration tests.
type testEnv struct {
	DB        *sql.DB
	Sessions  *session.Store
	UserStore *store.UserStore
	Contacts  *store.ContactStore
	Catalog   *store.Catalog
	PageCache *cache.PageCache
	Auth      *Auth
	Admin     *Admin
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	rn := newTestRenderer(t, sessions)
	users := store.NewUserStore(db)
	contacts := store.NewContactStore(db)
	cat := store.NewCatalog(db)
	pc := cache.NewPageCache(vk, time.Minute)

	return &testEnv{
		DB:        db,
		Sessions:  sessions,
		UserStore: users,
		Contacts:  contacts,
		Catalog:   cat,
		PageCache: pc,
		Auth:      NewAuth(rn, sessions, users, "Tutorials"),
		Admin:     NewAdmin(rn, sessions, cat, contacts, users, pc),
	}
}

// createUser inserts a user removed again when the test ends.
func createUser(t *testing.T, env *testEnv, username, password string, isStaff bool) *models.User {
	t.Helper()
	email := username + "@handlers.test"
	env.DB.Exec("DELETE FROM users WHERE email = $1", email)
	u, err := env.UserStore.Create(context.Background(), username, email, password, isStaff)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return middleware.WithSession(ctx, data)
}

// sessionFor builds session data for user. The session is persisted in
// Valkey so handlers that call Update find it, and the cookie is attached
// to req.
func sessionFor(t *testing.T, env *testEnv, user *models.User, twoFADone bool) (*session.Data, *http.Cookie) {
	t.Helper()
	data := &session.Data{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		IsStaff:   user.IsStaff,
		TwoFADone: twoFADone,
	}
	rec := httptest.NewRecorder()
	if err := env.Sessions.Create(context.Background(), rec, data); err != nil {
		t.Fatalf("session create: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return data, c
		}
	}
	t.Fatal("session cookie not set")
	return nil, nil
}

// postForm builds a POST request with an urlencoded body.
func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// cookieNamed returns the named cookie set on a response, or nil.
func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
