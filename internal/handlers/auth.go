// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"tutorialsite/internal/forms"
	"tutorialsite/internal/middleware"
	"tutorialsite/internal/models"
	"tutorialsite/internal/render"
	"tutorialsite/internal/session"
	"tutorialsite/internal/store"
)

// Auth groups member registration, sign-in, the account pages and the
// staff 2FA step.
type Auth struct {
	renderer  *render.Renderer
	sessions  *session.Store
	userStore *store.UserStore
	issuer    string
}

// NewAuth creates a new Auth handler group. issuer labels the TOTP entry
// in authenticator apps.
func NewAuth(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore, issuer string) *Auth {
	return &Auth{
		renderer:  renderer,
		sessions:  sessions,
		userStore: userStore,
		issuer:    issuer,
	}
}

// RegisterPage renders the sign-up form.
func (a *Auth) RegisterPage(w http.ResponseWriter, r *http.Request) {
	a.renderRegister(w, r, forms.RegisterForm{}, nil)
}

// RegisterSubmit creates a member account and signs the new member in.
func (a *Auth) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := forms.NewRegisterForm(r)

	errs := forms.FieldErrors(forms.Validate(form))
	if errs == nil {
		errs = map[string]string{}
	}

	if errs["username"] == "" {
		existing, err := a.userStore.FindByUsername(ctx, form.Username)
		if err != nil {
			slog.Error("register lookup failed", "error", err)
			serverError(a.renderer, w, r)
			return
		}
		if existing != nil {
			errs["username"] = "A user with that username already exists."
		}
	}
	if errs["email"] == "" {
		existing, err := a.userStore.FindByEmail(ctx, form.Email)
		if err != nil {
			slog.Error("register lookup failed", "error", err)
			serverError(a.renderer, w, r)
			return
		}
		if existing != nil {
			errs["email"] = "A user with that email already exists."
		}
	}

	if len(errs) > 0 {
		a.renderRegister(w, r, form, errs)
		return
	}

	user, err := a.userStore.Create(ctx, form.Username, form.Email, form.Password1, false)
	if err != nil {
		slog.Error("create user failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	slog.Info("member registered", "username", user.Username)

	if err := a.startSession(w, r, user); err != nil {
		slog.Error("session create failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	a.sessions.AddFlash(w, r, session.FlashSuccess,
		"New account created: "+user.Username+". You are now logged in.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *Auth) renderRegister(w http.ResponseWriter, r *http.Request, form forms.RegisterForm, errs map[string]string) {
	form.Password1, form.Password2 = "", ""
	data := &render.PageData{
		Title:   "Register",
		Section: "register",
		Form:    form,
		Errors:  errs,
	}
	if len(errs) > 0 {
		data.Flashes = []session.Flash{{Level: session.FlashError, Message: "Please correct the errors below."}}
	}
	a.renderer.Page(w, r, "register", data)
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	a.renderLogin(w, r, forms.LoginForm{}, safeNext(r.URL.Query().Get("next")), nil)
}

// LoginSubmit checks the credentials and starts a session. Staff still
// pass the TOTP step before the admin area opens.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	form := forms.NewLoginForm(r)
	next := safeNext(r.FormValue("next"))

	if err := forms.Validate(form); err != nil {
		a.renderLogin(w, r, form, next, forms.FieldErrors(err))
		return
	}

	user, err := a.userStore.FindByUsername(r.Context(), form.Username)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	if user == nil || !a.userStore.CheckPassword(user, form.Password) {
		slog.Warn("login failed", "username", form.Username)
		a.renderLogin(w, r, form, next, map[string]string{})
		return
	}

	if err := a.startSession(w, r, user); err != nil {
		slog.Error("session create failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	a.sessions.AddFlash(w, r, session.FlashInfo, "You are now logged in as "+user.Username)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// renderLogin shows the login form. A non-nil errs marks a failed attempt.
func (a *Auth) renderLogin(w http.ResponseWriter, r *http.Request, form forms.LoginForm, next string, errs map[string]string) {
	form.Password = ""
	data := &render.PageData{
		Title:   "Login",
		Section: "login",
		Form:    form,
		Errors:  errs,
		Data:    map[string]any{"Next": next},
	}
	if errs != nil {
		data.Flashes = []session.Flash{{Level: session.FlashError, Message: "Invalid Username or Password."}}
	}
	a.renderer.Page(w, r, "login", data)
}

// Logout destroys the session and returns to the homepage.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	a.sessions.AddFlash(w, r, session.FlashInfo, "Logged Out Successfully!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *Auth) startSession(w http.ResponseWriter, r *http.Request, user *models.User) error {
	return a.sessions.Create(r.Context(), w, &session.Data{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		IsStaff:   user.IsStaff,
		TwoFADone: false,
	})
}

// safeNext only accepts local absolute paths as a post-login target.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}

// --- Staff 2FA ---

// TwoFASetupPage generates a TOTP secret for staff who have not enrolled
// yet and shows it as a QR code. Enrolled staff are sent to verification.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, ok := a.staffUser(w, r, sess)
	if !ok {
		return
	}

	if !user.Needs2FASetup() {
		http.Redirect(w, r, "/admin/2fa/verify", http.StatusSeeOther)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      a.issuer,
		AccountName: user.Username,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	if err := a.userStore.SetTOTPSecret(r.Context(), user.ID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	a.renderSetup(w, r, key, nil)
}

// TwoFASetupSubmit confirms the first code, enabling TOTP for the user.
func (a *Auth) TwoFASetupSubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, ok := a.staffUser(w, r, sess)
	if !ok {
		return
	}
	if user.TOTPSecret == nil {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		return
	}

	form := forms.NewTOTPForm(r)
	if err := forms.Validate(form); err != nil || !totp.Validate(form.Code, *user.TOTPSecret) {
		key, keyErr := otp.NewKeyFromURL(totpURL(a.issuer, user.Username, *user.TOTPSecret))
		if keyErr != nil {
			slog.Error("rebuild totp key failed", "error", keyErr)
			serverError(a.renderer, w, r)
			return
		}
		a.renderSetup(w, r, key, map[string]string{"code": "Invalid code. Please try again."})
		return
	}

	if err := a.userStore.EnableTOTP(r.Context(), user.ID); err != nil {
		slog.Error("enable totp failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	slog.Info("totp enabled", "username", user.Username)

	a.completeTwoFA(w, r, sess)
}

// TwoFAVerifyPage renders the code entry form for enrolled staff.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "2fa_verify", &render.PageData{
		Title: "Two-Factor Authentication",
	})
}

// TwoFAVerifySubmit validates the TOTP code and opens the admin area.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, ok := a.staffUser(w, r, sess)
	if !ok {
		return
	}
	if user.Needs2FASetup() || user.TOTPSecret == nil {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		return
	}

	form := forms.NewTOTPForm(r)
	if err := forms.Validate(form); err != nil || !totp.Validate(form.Code, *user.TOTPSecret) {
		slog.Warn("totp verification failed", "username", user.Username)
		a.renderer.Page(w, r, "2fa_verify", &render.PageData{
			Title:  "Two-Factor Authentication",
			Errors: map[string]string{"code": "Invalid code. Please try again."},
		})
		return
	}

	a.completeTwoFA(w, r, sess)
}

func (a *Auth) completeTwoFA(w http.ResponseWriter, r *http.Request, sess *session.Data) {
	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// staffUser loads the signed-in staff member. On failure it has already
// written the response.
func (a *Auth) staffUser(w http.ResponseWriter, r *http.Request, sess *session.Data) (*models.User, bool) {
	if sess == nil {
		http.Redirect(w, r, "/login?next=/admin", http.StatusSeeOther)
		return nil, false
	}
	user, err := a.userStore.FindByID(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		serverError(a.renderer, w, r)
		return nil, false
	}
	if user == nil || !user.IsStaff {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}
	return user, true
}

func (a *Auth) renderSetup(w http.ResponseWriter, r *http.Request, key *otp.Key, errs map[string]string) {
	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	a.renderer.Page(w, r, "2fa_setup", &render.PageData{
		Title:  "Set Up Two-Factor Authentication",
		Errors: errs,
		Data: map[string]any{
			"QRCode": template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)),
			"Secret": key.Secret(),
		},
	})
}

// totpURL rebuilds the otpauth URL for a stored secret so a failed first
// attempt can show the same QR code again.
func totpURL(issuer, account, secret string) string {
	q := url.Values{}
	q.Set("secret", secret)
	q.Set("issuer", issuer)
	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuer + ":" + account,
		RawQuery: q.Encode(),
	}
	return u.String()
}
