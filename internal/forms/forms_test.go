package forms

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestValidateContactForm(t *testing.T) {
	tests := []struct {
		name       string
		form       ContactForm
		wantFields []string
	}{
		{
			name: "valid",
			form: ContactForm{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Thanks!"},
		},
		{
			name:       "all empty",
			form:       ContactForm{},
			wantFields: []string{"name", "email", "subject", "message"},
		},
		{
			name:       "bad email",
			form:       ContactForm{Name: "Ada", Email: "not-an-email", Subject: "Hi", Message: "Thanks!"},
			wantFields: []string{"email"},
		},
		{
			name:       "blank subject",
			form:       ContactForm{Name: "Ada", Email: "ada@example.com", Subject: "   ", Message: "Thanks!"},
			wantFields: []string{"subject"},
		},
		{
			name:       "name too long",
			form:       ContactForm{Name: strings.Repeat("a", 101), Email: "ada@example.com", Subject: "Hi", Message: "x"},
			wantFields: []string{"name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.form)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(ve.Fields) != len(tt.wantFields) {
				t.Errorf("fields: got %v, want %v", ve.Fields, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if ve.Get(f) == "" {
					t.Errorf("expected message for %q, got %v", f, ve.Fields)
				}
			}
		})
	}
}

func TestValidateCustomMessages(t *testing.T) {
	err := Validate(ContactForm{Email: "ada@example.com", Subject: "Hi", Message: "x"})
	if got := FieldErrors(err)["name"]; got != notBlankText {
		t.Errorf("name: got %q, want %q", got, notBlankText)
	}

	err = Validate(LoginForm{})
	if got := FieldErrors(err)["username"]; got != requiredText {
		t.Errorf("username: got %q, want %q", got, requiredText)
	}
}

func TestValidateRegisterForm(t *testing.T) {
	valid := RegisterForm{
		Username:  "ada",
		Email:     "ada@example.com",
		Password1: "correct-horse",
		Password2: "correct-horse",
	}
	if err := Validate(valid); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(f *RegisterForm)
		field   string
		message string
	}{
		{"mismatch", func(f *RegisterForm) { f.Password2 = "different-one" }, "password2", eqFieldText},
		{"numeric", func(f *RegisterForm) { f.Password1, f.Password2 = "12345678", "12345678" }, "password1", notNumericText},
		{"bad username", func(f *RegisterForm) { f.Username = "ada lovelace" }, "username", usernameText},
		{"similar", func(f *RegisterForm) { f.Password1, f.Password2 = "xADAx-secret", "xADAx-secret" }, "password1", similarText},
		{"short", func(f *RegisterForm) { f.Password1, f.Password2 = "abc", "abc" }, "password1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			fields := FieldErrors(Validate(f))
			got, ok := fields[tt.field]
			if !ok {
				t.Fatalf("expected error on %q, got %v", tt.field, fields)
			}
			if tt.message != "" && got != tt.message {
				t.Errorf("%s: got %q, want %q", tt.field, got, tt.message)
			}
		})
	}
}

func TestValidatePasswordChangeForm(t *testing.T) {
	err := Validate(PasswordChangeForm{OldPassword: "old", NewPassword1: "new-secret", NewPassword2: "new-secret"})
	if err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}

	fields := FieldErrors(Validate(PasswordChangeForm{OldPassword: "old", NewPassword1: "new-secret", NewPassword2: "other"}))
	if fields["new_password2"] != eqFieldText {
		t.Errorf("new_password2: got %q", fields["new_password2"])
	}
}

func TestValidateTOTPForm(t *testing.T) {
	for code, ok := range map[string]bool{"123456": true, "12345": false, "abcdef": false, "": false} {
		err := Validate(TOTPForm{Code: code})
		if (err == nil) != ok {
			t.Errorf("code %q: got err=%v, want ok=%v", code, err, ok)
		}
	}
}

func TestValidateProfileFormOptionalNames(t *testing.T) {
	if err := Validate(ProfileForm{Email: "ada@example.com"}); err != nil {
		t.Errorf("names should be optional: %v", err)
	}
}

func TestNewContactFormTrims(t *testing.T) {
	body := url.Values{
		"name":    {"  Ada  "},
		"email":   {" ada@example.com "},
		"subject": {"Hi"},
		"message": {"\nHello\n"},
	}
	req := httptest.NewRequest("POST", "/contact", strings.NewReader(body.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	f := NewContactForm(req)
	if f.Name != "Ada" || f.Email != "ada@example.com" || f.Message != "Hello" {
		t.Errorf("not trimmed: %+v", f)
	}
}

func TestValidationErrorString(t *testing.T) {
	ve := &ValidationError{Fields: map[string]string{"b": "x", "a": "y"}}
	if got := ve.Error(); got != "invalid form fields: a, b" {
		t.Errorf("Error(): got %q", got)
	}

	var nilErr *ValidationError
	if nilErr.Get("a") != "" {
		t.Error("Get on nil should be empty")
	}
	if FieldErrors(errors.New("other")) != nil {
		t.Error("FieldErrors of a plain error should be nil")
	}
}

func TestValidateCatalogForms(t *testing.T) {
	seriesID := "6f1c1b8e-6a55-4a40-9b0e-2d7a1f0f3c11"

	tests := []struct {
		name      string
		form      any
		wantField string
		wantMsg   string
	}{
		{"valid category", CategoryForm{Name: "Go", Slug: "go", Summary: "Gophers"}, "", ""},
		{"bad slug", CategoryForm{Name: "Go", Slug: "Go Lang", Summary: "x"}, "slug", "Enter a valid slug"},
		{"reserved category slug", CategoryForm{Name: "Search", Slug: "search", Summary: "x"}, "slug", "taken by a site page"},
		{"missing summary", CategoryForm{Name: "Go", Slug: "go"}, "summary", "This field cannot be blank."},
		{"series may use a route name", SeriesForm{Name: "Login", Slug: "login", Summary: "x", CategoryID: seriesID}, "", ""},
		{"series without category", SeriesForm{Name: "S", Slug: "s", Summary: "x", CategoryID: "nope"}, "category_id", "Select a valid choice."},
		{"valid tutorial", TutorialForm{Title: "T", Slug: "t", SeriesID: seriesID, Content: "body"}, "", ""},
		{"reserved tutorial slug", TutorialForm{Title: "T", Slug: "admin", SeriesID: seriesID, Content: "body"}, "slug", "taken by a site page"},
		{"bad published", TutorialForm{Title: "T", Slug: "t", SeriesID: seriesID, Published: "yesterday", Content: "body"}, "published", "Enter a valid date/time."},
		{"empty content", TutorialForm{Title: "T", Slug: "t", SeriesID: seriesID, Content: "  "}, "content", "This field cannot be blank."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.form)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			got := FieldErrors(err)[tt.wantField]
			if !strings.Contains(got, tt.wantMsg) {
				t.Errorf("%s: got %q, want it to contain %q", tt.wantField, got, tt.wantMsg)
			}
		})
	}
}

func TestNewTutorialFormDerivesSlug(t *testing.T) {
	body := url.Values{
		"title":     {"  Loops & Ranges "},
		"slug":      {""},
		"published": {"2024-03-01T09:30"},
		"content":   {"  keep me  "},
	}
	req := httptest.NewRequest("POST", "/admin/tutorials/new", strings.NewReader(body.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	f := NewTutorialForm(req)
	if f.Slug != "loops-and-ranges" {
		t.Errorf("slug: got %q", f.Slug)
	}
	if f.Content != "  keep me  " {
		t.Errorf("content should be verbatim, got %q", f.Content)
	}

	now := time.Now()
	want := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	if got := f.PublishedAt(now); !got.Equal(want) {
		t.Errorf("PublishedAt: got %v, want %v", got, want)
	}
	f.Published = ""
	if got := f.PublishedAt(now); !got.Equal(now) {
		t.Errorf("empty PublishedAt: got %v, want now", got)
	}
}
