// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"tutorialsite/internal/middleware"
	"tutorialsite/internal/models"
	"tutorialsite/internal/render"
	"tutorialsite/internal/session"
)

// UsersList renders the member list.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.userStore.List(r.Context())
	if err != nil {
		slog.Error("list users failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	a.renderer.Page(w, r, "admin_users", &render.PageData{
		Title:   "Users",
		Section: "users",
		Data:    map[string]any{"Users": users},
	})
}

// UserToggleStaff grants or revokes staff access. The change applies from
// the member's next login.
func (a *Admin) UserToggleStaff(w http.ResponseWriter, r *http.Request) {
	target, ok := a.otherUser(w, r)
	if !ok {
		return
	}

	if err := a.userStore.SetStaff(r.Context(), target.ID, !target.IsStaff); err != nil {
		slog.Error("set staff failed", "error", err, "target_user", target.ID)
		serverError(a.renderer, w, r)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	slog.Info("staff access changed", "admin", sess.Username, "target_user", target.Username, "staff", !target.IsStaff)
	if target.IsStaff {
		a.sessions.AddFlash(w, r, session.FlashInfo, fmt.Sprintf("%s is no longer staff.", target.Username))
	} else {
		a.sessions.AddFlash(w, r, session.FlashInfo, fmt.Sprintf("%s is now staff.", target.Username))
	}
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// UserResetTwoFA clears another member's TOTP enrolment, forcing setup on
// their next staff login.
func (a *Admin) UserResetTwoFA(w http.ResponseWriter, r *http.Request) {
	target, ok := a.otherUser(w, r)
	if !ok {
		return
	}

	if err := a.userStore.ResetTOTP(r.Context(), target.ID); err != nil {
		slog.Error("reset 2fa failed", "error", err, "target_user", target.ID)
		serverError(a.renderer, w, r)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	slog.Info("2fa reset by admin", "admin", sess.Username, "target_user", target.Username)
	a.sessions.AddFlash(w, r, session.FlashInfo, fmt.Sprintf("Two-factor authentication reset for %s.", target.Username))
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// UserDelete removes another member's account.
func (a *Admin) UserDelete(w http.ResponseWriter, r *http.Request) {
	target, ok := a.otherUser(w, r)
	if !ok {
		return
	}

	if err := a.userStore.Delete(r.Context(), target.ID); err != nil {
		slog.Error("delete user failed", "error", err, "target_user", target.ID)
		serverError(a.renderer, w, r)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	slog.Info("user deleted", "admin", sess.Username, "target_user", target.Username)
	a.sessions.AddFlash(w, r, session.FlashInfo, fmt.Sprintf("User %s deleted.", target.Username))
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// otherUser loads the {id} user for a management action. Staff cannot act
// on their own account from here.
func (a *Admin) otherUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, ok := parseID(w, r)
	if !ok {
		return nil, false
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.UserID == id {
		http.Error(w, "Cannot change your own account here", http.StatusForbidden)
		return nil, false
	}

	target, err := a.userStore.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find user failed", "error", err, "id", id)
		serverError(a.renderer, w, r)
		return nil, false
	}
	if target == nil {
		notFound(a.renderer, w, r)
		return nil, false
	}
	return target, true
}
