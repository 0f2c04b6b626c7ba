// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains. Routes
// are organized into public, auth, admin, and API groups with the
// appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/handlers"
	"inkpress/internal/middleware"
	"inkpress/internal/session"
	"inkpress/web"
)

// New creates the configured chi router. secureCookies should be false
// only in development; loginLimiter throttles credential submissions.
func New(
	sessionStore *session.Store,
	loginLimiter *middleware.RateLimiter,
	secureCookies bool,
	admin *handlers.Admin,
	auth *handlers.Auth,
	public *handlers.Public,
	api *handlers.API,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	csrf := middleware.NewCSRF(secureCookies)

	// Health check. No auth, no CSRF.
	r.Get("/health", healthHandler)

	// Embedded static assets.
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))

	// Auth pages. Rate limiting applies to credential submissions only.
	r.Group(func(r chi.Router) {
		r.Use(csrf)

		r.Get("/login", auth.LoginPage)
		r.Get("/register", auth.RegisterPage)

		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Middleware)
			r.Post("/login", auth.LoginSubmit)
			r.Post("/register", auth.RegisterSubmit)
		})

		// Second factor entry for accounts with TOTP enrolled.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/login/2fa", auth.TwoFAVerifyPage)
			r.Post("/login/2fa", auth.TwoFAVerifySubmit)
		})

		r.Post("/logout", auth.Logout)
	})

	// Admin panel. Everything requires a session; the category editor
	// and user management are admin-only.
	r.Route("/admin", func(r chi.Router) {
		r.Use(csrf)
		r.Use(middleware.RequireAuth)

		// TOTP enrollment happens before 2FA is considered complete.
		r.Get("/2fa/setup", auth.TwoFASetupPage)
		r.Post("/2fa/setup", auth.TwoFASetupSubmit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Require2FA)

			r.Get("/", admin.Dashboard)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", admin.PostsList)
				r.Get("/new", admin.PostNew)
				r.Post("/new", admin.PostCreate)
				r.Get("/{id}", admin.PostEdit)
				r.Post("/{id}", admin.PostUpdate)
				r.Post("/{id}/delete", admin.PostDelete)
			})

			r.Route("/media", func(r chi.Router) {
				r.Get("/", admin.MediaLibrary)
				r.Post("/", admin.MediaUpload)
				r.Post("/{id}/delete", admin.MediaDelete)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/categories", admin.CategoriesPage)

				r.Route("/users", func(r chi.Router) {
					r.Get("/", admin.UsersList)
					r.Post("/{id}/reset-2fa", admin.UserReset2FA)
				})
			})
		})
	})

	// JSON API used by the category editor. The CSRF token endpoint must
	// run inside the CSRF middleware so a token cookie gets issued.
	r.Route("/api", func(r chi.Router) {
		r.Use(csrf)
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)
		r.Use(middleware.RequireAdmin)

		r.Get("/csrf-token", api.CSRFToken)
		r.Post("/categories", api.Categories)
	})

	// Public site.
	r.Get("/", public.Home)
	r.Get("/posts/{slug}", public.Post)
	r.Get("/category/{id}", public.Category)
	r.Get("/search", public.Search)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
