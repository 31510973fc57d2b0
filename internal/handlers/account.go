// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"tutorialsite/internal/forms"
	"tutorialsite/internal/middleware"
	"tutorialsite/internal/models"
	"tutorialsite/internal/render"
	"tutorialsite/internal/session"
)

// Account shows the signed-in member's profile.
func (a *Auth) Account(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}

	a.renderer.Page(w, r, "account", &render.PageData{
		Title:   "My Account",
		Section: "account",
		Data:    map[string]any{"User": user},
	})
}

// EditProfilePage renders the profile form filled with current values.
func (a *Auth) EditProfilePage(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}

	a.renderProfile(w, r, forms.ProfileForm{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}, nil)
}

// EditProfileSubmit saves the name and email of the signed-in member.
func (a *Auth) EditProfileSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}

	form := forms.NewProfileForm(r)
	errs := forms.FieldErrors(forms.Validate(form))
	if errs == nil {
		errs = map[string]string{}
	}

	if errs["email"] == "" && !strings.EqualFold(form.Email, user.Email) {
		other, err := a.userStore.FindByEmail(ctx, form.Email)
		if err != nil {
			slog.Error("profile email lookup failed", "error", err)
			serverError(a.renderer, w, r)
			return
		}
		if other != nil && other.ID != user.ID {
			errs["email"] = "A user with that email already exists."
		}
	}

	if len(errs) > 0 {
		a.renderProfile(w, r, form, errs)
		return
	}

	if err := a.userStore.UpdateProfile(ctx, user.ID, form.FirstName, form.LastName, form.Email); err != nil {
		slog.Error("update profile failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	// Keep the cached session copy in step with the new email.
	sess := middleware.SessionFromCtx(ctx)
	sess.Email = form.Email
	if err := a.sessions.Update(ctx, r, sess); err != nil {
		slog.Warn("session update failed", "error", err)
	}

	a.sessions.AddFlash(w, r, session.FlashSuccess, "Profile updated successfully!")
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}

func (a *Auth) renderProfile(w http.ResponseWriter, r *http.Request, form forms.ProfileForm, errs map[string]string) {
	data := &render.PageData{
		Title:   "Edit Profile",
		Section: "account",
		Form:    form,
		Errors:  errs,
	}
	if len(errs) > 0 {
		data.Flashes = []session.Flash{{Level: session.FlashError, Message: "Please correct the errors below."}}
	}
	a.renderer.Page(w, r, "edit_profile", data)
}

// ChangePasswordPage renders the password change form.
func (a *Auth) ChangePasswordPage(w http.ResponseWriter, r *http.Request) {
	a.renderPassword(w, r, nil)
}

// ChangePasswordSubmit replaces the password after checking the old one.
// The current session stays valid.
func (a *Auth) ChangePasswordSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}

	form := forms.NewPasswordChangeForm(r)
	errs := forms.FieldErrors(forms.Validate(form))
	if errs == nil {
		errs = map[string]string{}
	}
	if errs["old_password"] == "" && !a.userStore.CheckPassword(user, form.OldPassword) {
		errs["old_password"] = "Your old password was entered incorrectly. Please enter it again."
	}
	if len(errs) > 0 {
		a.renderPassword(w, r, errs)
		return
	}

	if err := a.userStore.SetPassword(r.Context(), user.ID, form.NewPassword1); err != nil {
		slog.Error("change password failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	slog.Info("password changed", "username", user.Username)

	a.sessions.AddFlash(w, r, session.FlashSuccess, "Password changed successfully!")
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}

func (a *Auth) renderPassword(w http.ResponseWriter, r *http.Request, errs map[string]string) {
	data := &render.PageData{
		Title:   "Change Password",
		Section: "account",
		Form:    forms.PasswordChangeForm{},
		Errors:  errs,
	}
	if len(errs) > 0 {
		data.Flashes = []session.Flash{{Level: session.FlashError, Message: "Please correct the errors below."}}
	}
	a.renderer.Page(w, r, "change_password", data)
}

// currentUser loads the member behind the session. A session whose user
// has been deleted is destroyed and the visitor sent to the login page.
func (a *Auth) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, false
	}

	user, err := a.userStore.FindByID(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("load current user failed", "error", err)
		serverError(a.renderer, w, r)
		return nil, false
	}
	if user == nil {
		a.sessions.Destroy(r.Context(), w, r)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, false
	}
	return user, true
}
