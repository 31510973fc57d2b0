// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package forms

import (
	"net/http"
	"strings"
	"time"

	"tutorialsite/internal/slug"
)

// ContactForm is the public contact form.
type ContactForm struct {
	Name    string `form:"name" validate:"notblank,max=100"`
	Email   string `form:"email" validate:"required,email,max=254"`
	Subject string `form:"subject" validate:"notblank,max=200"`
	Message string `form:"message" validate:"notblank,max=5000"`
}

// NewContactForm reads a ContactForm from a parsed request.
func NewContactForm(r *http.Request) ContactForm {
	return ContactForm{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		Subject: strings.TrimSpace(r.FormValue("subject")),
		Message: strings.TrimSpace(r.FormValue("message")),
	}
}

// RegisterForm creates a new member account.
type RegisterForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"required,email,max=254"`
	Password1 string `form:"password1" validate:"required,min=8,max=128,notnumeric"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

// NewRegisterForm reads a RegisterForm from a parsed request. Passwords
// are taken verbatim.
func NewRegisterForm(r *http.Request) RegisterForm {
	return RegisterForm{
		Username:  strings.TrimSpace(r.FormValue("username")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		Password1: r.FormValue("password1"),
		Password2: r.FormValue("password2"),
	}
}

// LoginForm authenticates a member by username.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func NewLoginForm(r *http.Request) LoginForm {
	return LoginForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
}

// ProfileForm edits a member's name and email.
type ProfileForm struct {
	FirstName string `form:"first_name" validate:"max=100"`
	LastName  string `form:"last_name" validate:"max=100"`
	Email     string `form:"email" validate:"required,email,max=254"`
}

func NewProfileForm(r *http.Request) ProfileForm {
	return ProfileForm{
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Email:     strings.TrimSpace(r.FormValue("email")),
	}
}

// PasswordChangeForm replaces the password of a signed-in member.
type PasswordChangeForm struct {
	OldPassword  string `form:"old_password" validate:"required"`
	NewPassword1 string `form:"new_password1" validate:"required,min=8,max=128,notnumeric"`
	NewPassword2 string `form:"new_password2" validate:"required,eqfield=NewPassword1"`
}

func NewPasswordChangeForm(r *http.Request) PasswordChangeForm {
	return PasswordChangeForm{
		OldPassword:  r.FormValue("old_password"),
		NewPassword1: r.FormValue("new_password1"),
		NewPassword2: r.FormValue("new_password2"),
	}
}

// TOTPForm carries a six-digit authenticator code.
type TOTPForm struct {
	Code string `form:"code" validate:"required,len=6,numeric"`
}

func NewTOTPForm(r *http.Request) TOTPForm {
	return TOTPForm{Code: strings.TrimSpace(r.FormValue("code"))}
}

// CategoryForm creates or edits a category in the staff area.
type CategoryForm struct {
	Name    string `form:"name" validate:"notblank,max=200"`
	Slug    string `form:"slug" validate:"required,max=200,catalogslug,notreserved"`
	Summary string `form:"summary" validate:"notblank,max=200"`
}

// NewCategoryForm reads a CategoryForm. A blank slug is derived from the
// name.
func NewCategoryForm(r *http.Request) CategoryForm {
	name := strings.TrimSpace(r.FormValue("name"))
	return CategoryForm{
		Name:    name,
		Slug:    slugOrDefault(r.FormValue("slug"), name),
		Summary: strings.TrimSpace(r.FormValue("summary")),
	}
}

// SeriesForm creates or edits a series. Series slugs never appear in URLs,
// so route names are allowed.
type SeriesForm struct {
	Name       string `form:"name" validate:"notblank,max=200"`
	Slug       string `form:"slug" validate:"required,max=200,catalogslug"`
	Summary    string `form:"summary" validate:"notblank,max=200"`
	CategoryID string `form:"category_id" validate:"required,uuid"`
}

func NewSeriesForm(r *http.Request) SeriesForm {
	name := strings.TrimSpace(r.FormValue("name"))
	return SeriesForm{
		Name:       name,
		Slug:       slugOrDefault(r.FormValue("slug"), name),
		Summary:    strings.TrimSpace(r.FormValue("summary")),
		CategoryID: strings.TrimSpace(r.FormValue("category_id")),
	}
}

// PublishedLayout is the format of the published field, as sent by a
// datetime-local input.
const PublishedLayout = "2006-01-02T15:04"

// TutorialForm creates or edits a tutorial.
type TutorialForm struct {
	Title     string `form:"title" validate:"notblank,max=200"`
	Slug      string `form:"slug" validate:"required,max=200,catalogslug,notreserved"`
	SeriesID  string `form:"series_id" validate:"required,uuid"`
	Published string `form:"published" validate:"omitempty,datetime=2006-01-02T15:04"`
	Content   string `form:"content" validate:"notblank"`
}

// NewTutorialForm reads a TutorialForm. Content is kept verbatim.
func NewTutorialForm(r *http.Request) TutorialForm {
	title := strings.TrimSpace(r.FormValue("title"))
	return TutorialForm{
		Title:     title,
		Slug:      slugOrDefault(r.FormValue("slug"), title),
		SeriesID:  strings.TrimSpace(r.FormValue("series_id")),
		Published: strings.TrimSpace(r.FormValue("published")),
		Content:   r.FormValue("content"),
	}
}

// PublishedAt returns the parsed publish time, or now when the field was
// left empty. Call it only on a validated form.
func (f TutorialForm) PublishedAt(now time.Time) time.Time {
	t, err := time.ParseInLocation(PublishedLayout, f.Published, time.Local)
	if err != nil {
		return now
	}
	return t
}

func slugOrDefault(s, from string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return slug.Generate(from)
}
