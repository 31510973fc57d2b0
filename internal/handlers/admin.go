// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the tutorial site.
// Handlers are grouped by concern (public, auth, admin) and receive
// their dependencies through the handler struct.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tutorialsite/internal/cache"
	"tutorialsite/internal/render"
	"tutorialsite/internal/session"
	"tutorialsite/internal/store"
)

// Admin groups the staff area handlers: the dashboard, the contact
// message inbox, the catalog editor and user management.
type Admin struct {
	renderer  *render.Renderer
	sessions  *session.Store
	catalog   *store.Catalog
	contacts  *store.ContactStore
	userStore *store.UserStore
	pageCache *cache.PageCache // nil when page caching is off
}

// NewAdmin creates a new Admin handler group. pageCache may be nil.
func NewAdmin(renderer *render.Renderer, sessions *session.Store, catalog *store.Catalog, contacts *store.ContactStore, userStore *store.UserStore, pageCache *cache.PageCache) *Admin {
	return &Admin{
		renderer:  renderer,
		sessions:  sessions,
		catalog:   catalog,
		contacts:  contacts,
		userStore: userStore,
		pageCache: pageCache,
	}
}

// Dashboard renders catalog totals and the unread message count.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := a.catalog.Categories.Count(ctx)
	if err != nil {
		slog.Error("count categories failed", "error", err)
	}
	series, err := a.catalog.Series.Count(ctx)
	if err != nil {
		slog.Error("count series failed", "error", err)
	}
	tutorials, err := a.catalog.Tutorials.Count(ctx)
	if err != nil {
		slog.Error("count tutorials failed", "error", err)
	}
	unread, err := a.contacts.CountUnread(ctx)
	if err != nil {
		slog.Error("count unread messages failed", "error", err)
	}

	a.renderer.Page(w, r, "admin_dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"Categories": categories,
			"Series":     series,
			"Tutorials":  tutorials,
			"Unread":     unread,
		},
	})
}

// Messages lists contact messages, newest first. ?unread=1 hides read ones.
func (a *Admin) Messages(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "1"

	messages, err := a.contacts.List(r.Context(), unreadOnly)
	if err != nil {
		slog.Error("list contact messages failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	a.renderer.Page(w, r, "admin_messages", &render.PageData{
		Title:   "Messages",
		Section: "messages",
		Data: map[string]any{
			"Messages":   messages,
			"UnreadOnly": unreadOnly,
		},
	})
}

// MarkRead flags a message as read.
func (a *Admin) MarkRead(w http.ResponseWriter, r *http.Request) {
	a.setRead(w, r, true)
}

// MarkUnread flags a message as unread.
func (a *Admin) MarkUnread(w http.ResponseWriter, r *http.Request) {
	a.setRead(w, r, false)
}

func (a *Admin) setRead(w http.ResponseWriter, r *http.Request, read bool) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	found, err := a.contacts.SetRead(r.Context(), id, read)
	if err != nil {
		slog.Error("update message failed", "error", err, "id", id)
		serverError(a.renderer, w, r)
		return
	}
	if !found {
		notFound(a.renderer, w, r)
		return
	}

	if read {
		a.sessions.AddFlash(w, r, session.FlashInfo, "Message marked as read.")
	} else {
		a.sessions.AddFlash(w, r, session.FlashInfo, "Message marked as unread.")
	}
	http.Redirect(w, r, "/admin/messages", http.StatusSeeOther)
}

// --- Cache invalidation helpers ---

// invalidateCatalog drops every cached page. Category and series edits
// change the homepage, category pages and tutorial sidebars alike.
func (a *Admin) invalidateCatalog(ctx context.Context, kind string, id uuid.UUID, action string) {
	slog.Info("catalog changed", "kind", kind, "id", id, "action", action)
	if a.pageCache == nil {
		return
	}
	if _, err := a.pageCache.InvalidateAll(ctx); err != nil {
		slog.Warn("page cache clear failed", "error", err)
	}
}

// invalidateTutorialPage drops the cached page of one tutorial.
func (a *Admin) invalidateTutorialPage(ctx context.Context, id uuid.UUID, slug string) {
	slog.Info("catalog changed", "kind", "tutorial", "id", id, "action", "update")
	if a.pageCache == nil {
		return
	}
	a.pageCache.Invalidate(ctx, "/"+slug)
}

// parseID reads the {id} URL parameter, answering 400 when it is not a
// UUID.
func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
