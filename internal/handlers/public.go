// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tutorialsite/internal/catalog"
	"tutorialsite/internal/forms"
	"tutorialsite/internal/models"
	"tutorialsite/internal/render"
	"tutorialsite/internal/session"
	"tutorialsite/internal/slug"
)

// CategoryLister lists every category for the homepage.
type CategoryLister interface {
	List(ctx context.Context) ([]models.Category, error)
}

// MessageSaver stores a submitted contact message.
type MessageSaver interface {
	Create(ctx context.Context, m *models.ContactMessage) (*models.ContactMessage, error)
}

// Public groups handlers for the public catalog: the category list, the
// slug resolver, search and the contact form.
type Public struct {
	renderer   *render.Renderer
	sessions   *session.Store
	catalog    *catalog.Service
	categories CategoryLister
	messages   MessageSaver
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, sessions *session.Store, svc *catalog.Service, categories CategoryLister, messages MessageSaver) *Public {
	return &Public{
		renderer:   renderer,
		sessions:   sessions,
		catalog:    svc,
		categories: categories,
		messages:   messages,
	}
}

// Homepage lists all categories.
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	cats, err := p.categories.List(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		serverError(p.renderer, w, r)
		return
	}

	p.renderer.Page(w, r, "categories", &render.PageData{
		Title:   "Categories",
		Section: "home",
		Data:    map[string]any{"Categories": cats},
	})
}

// Slug resolves a top-level slug to a category page or a tutorial page.
func (p *Public) Slug(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	if !slug.Valid(s) {
		notFound(p.renderer, w, r)
		return
	}

	page, err := p.catalog.Resolve(r.Context(), s)
	if errors.Is(err, catalog.ErrNotFound) {
		slog.Debug("slug not found", "slug", s)
		notFound(p.renderer, w, r)
		return
	}
	if err != nil {
		slog.Error("resolve slug failed", "error", err, "slug", s)
		serverError(p.renderer, w, r)
		return
	}

	switch page.Kind {
	case catalog.PageCategory:
		p.renderer.Page(w, r, "category", &render.PageData{
			Title: page.Category.Category.Name,
			Data:  map[string]any{"Category": page.Category},
		})
	case catalog.PageTutorial:
		p.renderer.Page(w, r, "tutorial", &render.PageData{
			Title: page.Tutorial.Tutorial.Title,
			Data:  map[string]any{"Nav": page.Tutorial},
		})
	default:
		slog.Error("unknown page kind", "kind", page.Kind, "slug", s)
		serverError(p.renderer, w, r)
	}
}

// Search runs a catalog search for the q parameter.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, err := p.catalog.Search(r.Context(), query)
	if err != nil {
		slog.Error("search failed", "error", err, "query", query)
		serverError(p.renderer, w, r)
		return
	}

	p.renderer.Page(w, r, "search", &render.PageData{
		Title:   "Search",
		Section: "search",
		Data: map[string]any{
			"Query":   query,
			"Results": results,
		},
	})
}

// ContactPage renders an empty contact form.
func (p *Public) ContactPage(w http.ResponseWriter, r *http.Request) {
	p.renderContact(w, r, forms.ContactForm{}, nil)
}

// ContactSubmit validates and stores a contact message, then redirects
// back to the form with a confirmation flash.
func (p *Public) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	form := forms.NewContactForm(r)
	if err := forms.Validate(form); err != nil {
		p.renderContact(w, r, form, forms.FieldErrors(err))
		return
	}

	_, err := p.messages.Create(r.Context(), &models.ContactMessage{
		Name:    form.Name,
		Email:   form.Email,
		Subject: form.Subject,
		Message: form.Message,
	})
	if err != nil {
		slog.Error("save contact message failed", "error", err)
		serverError(p.renderer, w, r)
		return
	}

	slog.Info("contact message received", "email", form.Email, "subject", form.Subject)
	p.sessions.AddFlash(w, r, session.FlashSuccess, "Your message has been sent! We'll get back to you soon.")
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}

func (p *Public) renderContact(w http.ResponseWriter, r *http.Request, form forms.ContactForm, errs map[string]string) {
	data := &render.PageData{
		Title:   "Contact Us",
		Section: "contact",
		Form:    form,
		Errors:  errs,
	}
	if len(errs) > 0 {
		data.Flashes = []session.Flash{{Level: session.FlashError, Message: "Please correct the errors below."}}
	}
	p.renderer.Page(w, r, "contact", data)
}
