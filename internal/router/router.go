// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// tutorial site. It organizes routes into public, member and staff groups
// with appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"tutorialsite/internal/cache"
	"tutorialsite/internal/handlers"
	"tutorialsite/internal/middleware"
	"tutorialsite/internal/render"
	"tutorialsite/internal/session"
	"tutorialsite/web"
)

// Deps are the collaborators the route table needs. PageCache and
// RateLimiter are optional.
type Deps struct {
	Sessions      *session.Store
	Renderer      *render.Renderer
	PageCache     *cache.PageCache
	RateLimiter   *middleware.RateLimiter
	SecureCookies bool

	Public *handlers.Public
	Auth   *handlers.Auth
	Admin  *handlers.Admin
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request. LoadSession runs before
	// Logger so access lines carry the member name.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer(handlers.ServerErrorPage(d.Renderer)))
	r.Use(middleware.SecureHeaders(d.SecureCookies))
	r.Use(middleware.LoadSession(d.Sessions))
	r.Use(middleware.Logger)

	r.NotFound(handlers.NotFoundPage(d.Renderer))

	// Health check and static assets: no session work, no CSRF.
	r.Get("/health", healthHandler)
	static, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// Public form submissions share one per-IP budget.
	var limited []func(http.Handler) http.Handler
	if d.RateLimiter != nil {
		limited = append(limited, d.RateLimiter.Middleware)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(d.SecureCookies))

		r.Get("/search", d.Public.Search)
		r.Get("/contact", d.Public.ContactPage)
		r.With(limited...).Post("/contact", d.Public.ContactSubmit)

		// Anonymous-only pages.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RedirectIfLoggedIn)
			r.Get("/register", d.Auth.RegisterPage)
			r.With(limited...).Post("/register", d.Auth.RegisterSubmit)
			r.Get("/login", d.Auth.LoginPage)
			r.With(limited...).Post("/login", d.Auth.LoginSubmit)
		})
		r.Post("/logout", d.Auth.Logout)

		// Member pages.
		r.Route("/account", func(r chi.Router) {
			r.Use(middleware.RequireLogin)
			r.Get("/", d.Auth.Account)
			r.Get("/edit", d.Auth.EditProfilePage)
			r.Post("/edit", d.Auth.EditProfileSubmit)
			r.Get("/password", d.Auth.ChangePasswordPage)
			r.Post("/password", d.Auth.ChangePasswordSubmit)
		})

		// Staff area.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireLogin)
			r.Use(middleware.RequireStaff)

			// 2FA: requires staff but NOT completed 2FA.
			r.Get("/2fa/setup", d.Auth.TwoFASetupPage)
			r.Post("/2fa/setup", d.Auth.TwoFASetupSubmit)
			r.Get("/2fa/verify", d.Auth.TwoFAVerifyPage)
			r.Post("/2fa/verify", d.Auth.TwoFAVerifySubmit)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Require2FA)
				r.Get("/", d.Admin.Dashboard)

				r.Get("/messages", d.Admin.Messages)
				r.Post("/messages/{id}/read", d.Admin.MarkRead)
				r.Post("/messages/{id}/unread", d.Admin.MarkUnread)

				r.Get("/categories", d.Admin.CategoriesList)
				r.Get("/categories/new", d.Admin.CategoryNew)
				r.Post("/categories/new", d.Admin.CategoryCreate)
				r.Get("/categories/{id}", d.Admin.CategoryEdit)
				r.Post("/categories/{id}", d.Admin.CategoryUpdate)
				r.Post("/categories/{id}/delete", d.Admin.CategoryDelete)

				r.Get("/series", d.Admin.SeriesList)
				r.Get("/series/new", d.Admin.SeriesNew)
				r.Post("/series/new", d.Admin.SeriesCreate)
				r.Get("/series/{id}", d.Admin.SeriesEdit)
				r.Post("/series/{id}", d.Admin.SeriesUpdate)
				r.Post("/series/{id}/delete", d.Admin.SeriesDelete)

				r.Get("/tutorials", d.Admin.TutorialsList)
				r.Get("/tutorials/new", d.Admin.TutorialNew)
				r.Post("/tutorials/new", d.Admin.TutorialCreate)
				r.Get("/tutorials/{id}", d.Admin.TutorialEdit)
				r.Post("/tutorials/{id}", d.Admin.TutorialUpdate)
				r.Post("/tutorials/{id}/delete", d.Admin.TutorialDelete)

				r.Get("/users", d.Admin.UsersList)
				r.Post("/users/{id}/staff", d.Admin.UserToggleStaff)
				r.Post("/users/{id}/reset-2fa", d.Admin.UserResetTwoFA)
				r.Post("/users/{id}/delete", d.Admin.UserDelete)
			})
		})

		// Catalog pages, served from the page cache for anonymous visitors.
		// The slug catch-all is registered last.
		r.Group(func(r chi.Router) {
			if d.PageCache != nil {
				r.Use(d.PageCache.Middleware)
			}
			r.Get("/", d.Public.Homepage)
			r.Get("/{slug}", d.Public.Slug)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
