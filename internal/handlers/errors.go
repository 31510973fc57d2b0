// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"tutorialsite/internal/render"
)

// NotFoundPage returns a handler that renders the site's 404 page. The
// router uses it for unmatched paths.
func NotFoundPage(rn *render.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notFound(rn, w, r)
	}
}

// ServerErrorPage returns a handler that renders the site's 500 page,
// used by the panic recoverer.
func ServerErrorPage(rn *render.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serverError(rn, w, r)
	}
}

func notFound(rn *render.Renderer, w http.ResponseWriter, r *http.Request) {
	rn.Status(w, r, http.StatusNotFound, "404", &render.PageData{Title: "Page not found"})
}

func serverError(rn *render.Renderer, w http.ResponseWriter, r *http.Request) {
	rn.Status(w, r, http.StatusInternalServerError, "500", &render.PageData{Title: "Server error"})
}
