// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared infrastructure for handler integration
// tests. PostgreSQL-backed tests skip when the database is unreachable;
// Valkey is replaced by an in-process miniredis.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"inkpress/internal/cache"
	"inkpress/internal/categories"
	"inkpress/internal/database"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/render"
	"inkpress/internal/session"
	"inkpress/internal/store"
)

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
	user := envOr("POSTGRES_USER", "inkpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkpress")
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

// testValkey returns a Redis client backed by an in-process miniredis.
func testValkey(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

// testEnv holds the dependencies for handler integration tests.
type testEnv struct {
	DB            *sql.DB
	Renderer      *render.Renderer
	Sessions      *session.Store
	PostStore     *store.PostStore
	CategoryStore *store.CategoryStore
	MediaStore    *store.MediaStore
	UserStore     *store.UserStore
	CacheLog      *store.CacheLogStore
	PageCache     *cache.PageCache
	Admin         *Admin
	Auth          *Auth
	Public        *Public
	API           *API
}

// newTestEnv creates a complete test environment. Object storage is left
// unconfigured so the media library runs in read-only mode.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkey(t)

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	postStore := store.NewPostStore(db)
	categoryStore := store.NewCategoryStore(db)
	mediaStore := store.NewMediaStore(db)
	userStore := store.NewUserStore(db)
	cacheLog := store.NewCacheLogStore(db)
	pageCache := cache.NewPageCache(vk, time.Minute)

	service := categories.NewService(categoryStore, categories.DefaultMessages())

	return &testEnv{
		DB:            db,
		Renderer:      renderer,
		Sessions:      sessions,
		PostStore:     postStore,
		CategoryStore: categoryStore,
		MediaStore:    mediaStore,
		UserStore:     userStore,
		CacheLog:      cacheLog,
		PageCache:     pageCache,
		Admin:         NewAdmin(renderer, postStore, categoryStore, mediaStore, userStore, pageCache, cacheLog, nil),
		Auth:          NewAuth(renderer, sessions, userStore),
		Public:        NewPublic(renderer, postStore, categoryStore, pageCache),
		API:           NewAPI(service, pageCache, cacheLog),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates session data for an authenticated request.
func testSession(userID uuid.UUID, email, role string) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   true,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// testUser creates (or reuses) a user for FK references in tests.
func testUser(t *testing.T, env *testEnv, email string) *models.User {
	t.Helper()

	existing, err := env.UserStore.FindByEmail(email)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if existing != nil {
		return existing
	}

	user, err := env.UserStore.Create(email, "test-password-123", "Test User", models.RoleAuthor)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { env.UserStore.Delete(user.ID) })
	return user
}

// cleanPosts removes test posts by slug.
func cleanPosts(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM posts WHERE slug = $1", s)
	}
}

// cleanCategories removes test categories by name.
func cleanCategories(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, n := range names {
		db.Exec("DELETE FROM categories WHERE name = $1", n)
	}
}
