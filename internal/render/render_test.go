package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/session"

	"github.com/google/uuid"
)

// helperSession returns a session.Data suitable for rendering admin templates.
func helperSession() *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       "test@inkpress.local",
		DisplayName: "Test User",
		Role:        "admin",
		TwoFADone:   true,
	}
}

// helperRequestWithContext builds an *http.Request whose context carries a
// session, which the admin templates expect.
func helperRequestWithContext(method, target string, sess *session.Data) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := req.Context()
	if sess != nil {
		ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	}
	return req.WithContext(ctx)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		devMode bool
	}{
		{"dev mode", true},
		{"prod mode", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rn, err := New(tt.devMode)
			if err != nil {
				t.Fatalf("New(devMode=%v) returned error: %v", tt.devMode, err)
			}
			if len(rn.templates) == 0 {
				t.Error("renderer has no parsed templates")
			}

			// Verify well-known templates exist.
			for _, name := range []string{
				"dashboard", "login", "register", "2fa_setup", "2fa_verify",
				"posts_list", "post_form", "categories", "media_library",
				"users_list", "home", "post", "category", "search",
			} {
				if _, ok := rn.templates[name]; !ok {
					t.Errorf("expected template %q to be parsed", name)
				}
			}

			// base.html should NOT appear as a standalone template key.
			if _, ok := rn.templates["base"]; ok {
				t.Error("base.html should not be registered as a separate template")
			}
		})
	}
}

func TestNewDevMode(t *testing.T) {
	rn, err := New(true)
	if err != nil {
		t.Fatalf("New(true) error: %v", err)
	}

	// Render login (standalone) and check for CDN URL present in dev mode.
	w := httptest.NewRecorder()
	req := helperRequestWithContext(http.MethodGet, "/login", nil)
	rn.Page(w, req, "login", &PageData{Title: "Login"})

	body := w.Body.String()
	if !strings.Contains(body, "cdn.tailwindcss.com") {
		t.Error("dev mode: expected CDN tailwindcss URL in rendered output")
	}
	if strings.Contains(body, "/static/css/admin.css") {
		t.Error("dev mode: should NOT contain local static asset path")
	}
}

func TestNewProdMode(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatalf("New(false) error: %v", err)
	}

	w := httptest.NewRecorder()
	req := helperRequestWithContext(http.MethodGet, "/login", nil)
	rn.Page(w, req, "login", &PageData{Title: "Login"})

	body := w.Body.String()
	if strings.Contains(body, "cdn.tailwindcss.com") {
		t.Error("prod mode: should NOT contain CDN tailwindcss URL")
	}
	if !strings.Contains(body, "/static/css/admin.css") {
		t.Error("prod mode: expected local static asset path in rendered output")
	}
}

func TestDashboardRendering(t *testing.T) {
	rn, err := New(true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	sess := helperSession()
	req := helperRequestWithContext(http.MethodGet, "/admin", sess)
	w := httptest.NewRecorder()

	rn.Page(w, req, "dashboard", &PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Session: sess,
		Data: map[string]any{
			"PostCount":      5,
			"PublishedCount": 3,
			"CategoryCount":  4,
			"MediaCount":     10,
			"CacheLog":       nil,
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}

	body := w.Body.String()
	if !strings.Contains(body, "Dashboard") {
		t.Error("rendered output should contain page heading")
	}
	if !strings.Contains(body, "Test User") {
		t.Error("rendered output should contain session DisplayName")
	}
}

func TestCategoriesTreeRendering(t *testing.T) {
	rn, err := New(true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	child := models.Category{ID: uuid.New(), Name: "Child", SortOrder: 1, Depth: 1}
	root := models.Category{ID: uuid.New(), Name: "Root", SortOrder: 1, Children: []models.Category{child}}

	sess := helperSession()
	req := helperRequestWithContext(http.MethodGet, "/admin/categories", sess)
	w := httptest.NewRecorder()

	rn.Page(w, req, "categories", &PageData{
		Title:   "Categories",
		Section: "categories",
		Session: sess,
		Data:    map[string]any{"Tree": []models.Category{root}},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}

	body := w.Body.String()
	if !strings.Contains(body, root.ID.String()) {
		t.Error("rendered tree should carry root category id in data attribute")
	}
	if !strings.Contains(body, "Child") {
		t.Error("rendered tree should contain nested child category")
	}
	if !strings.Contains(body, "categorytree.js") {
		t.Error("categories page should load the tree editor script")
	}
}

func TestPublicHomeBytes(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	now := time.Now()
	excerpt := "A short summary."
	post := models.Post{
		ID:          uuid.New(),
		Title:       "Hello World",
		Slug:        "hello-world",
		Excerpt:     &excerpt,
		PublishedAt: &now,
		AuthorName:  "Admin",
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	out, err := rn.Bytes(req, "home", &PageData{
		Title: "Inkpress",
		Data: map[string]any{
			"Nav":      nil,
			"Query":    "",
			"Posts":    []models.Post{post},
			"BasePath": "/",
			"PrevPage": 0,
			"NextPage": 0,
		},
	})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	body := string(out)
	if !strings.Contains(body, "Hello World") {
		t.Error("home page should list the published post")
	}
	if !strings.Contains(body, "/posts/hello-world") {
		t.Error("home page should link to the post by slug")
	}
	if !strings.Contains(body, "A short summary.") {
		t.Error("home page should show the excerpt")
	}
}

func TestBytesUnknownTemplate(t *testing.T) {
	rn, err := New(true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = rn.Bytes(req, "nope", &PageData{})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected template-not-found error, got %v", err)
	}
}

func TestPageDataCSRFInjection(t *testing.T) {
	rn, err := New(true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// Run a request through the CSRF middleware to get a token in context.
	csrfMiddleware := middleware.NewCSRF(false)
	var capturedReq *http.Request
	inner := csrfMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
	}))

	setupRR := httptest.NewRecorder()
	inner.ServeHTTP(setupRR, httptest.NewRequest(http.MethodGet, "/login", nil))

	if capturedReq == nil {
		t.Fatal("CSRF middleware did not call inner handler")
	}
	csrfToken := middleware.CSRFTokenFromCtx(capturedReq.Context())
	if csrfToken == "" {
		t.Fatal("CSRF token not found in context")
	}

	w := httptest.NewRecorder()
	data := &PageData{Title: "Login"}
	rn.Page(w, capturedReq, "login", data)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}

	body := w.Body.String()
	if !strings.Contains(body, csrfToken) {
		t.Error("rendered output should contain the CSRF token from context")
	}
	if data.CSRFToken != csrfToken {
		t.Errorf("PageData.CSRFToken: got %q, want %q", data.CSRFToken, csrfToken)
	}
}
