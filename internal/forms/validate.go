// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package forms decodes and validates the HTML forms posted to the site.
// Validation runs through go-playground/validator with English messages;
// failures come back as a *ValidationError keyed by form field name.
package forms

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"tutorialsite/internal/slug"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "This field cannot be blank."

	usernameTag   = "username"
	usernameText  = "Enter a valid username. It may contain only letters, numbers, and @/./+/-/_ characters."
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)

	notNumericTag  = "notnumeric"
	notNumericText = "This password is entirely numeric."

	requiredTag  = "required"
	requiredText = "This field is required."

	eqFieldTag  = "eqfield"
	eqFieldText = "The two password fields didn't match."

	similarTag  = "similar"
	similarText = "The password is too similar to the username."

	catalogSlugTag  = "catalogslug"
	catalogSlugText = "Enter a valid slug consisting of lowercase letters, numbers or hyphens."

	notReservedTag  = "notreserved"
	notReservedText = "This slug is taken by a site page."

	uuidTag  = "uuid"
	uuidText = "Select a valid choice."

	datetimeTag  = "datetime"
	datetimeText = "Enter a valid date/time."
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report errors under the HTML form field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterValidation(usernameTag, usernameValidation)
	_ = validate.RegisterValidation(notNumericTag, notNumericValidation)
	_ = validate.RegisterValidation(catalogSlugTag, catalogSlugValidation)
	_ = validate.RegisterValidation(notReservedTag, notReservedValidation)
	validate.RegisterStructValidation(registerStructValidation, RegisterForm{})

	registerCustomTranslation(notBlankTag, notBlankText)
	registerCustomTranslation(usernameTag, usernameText)
	registerCustomTranslation(notNumericTag, notNumericText)
	registerCustomTranslation(similarTag, similarText)
	registerCustomTranslation(requiredTag, requiredText, true)
	registerCustomTranslation(eqFieldTag, eqFieldText, true)
	registerCustomTranslation(catalogSlugTag, catalogSlugText)
	registerCustomTranslation(notReservedTag, notReservedText)
	registerCustomTranslation(uuidTag, uuidText, true)
	registerCustomTranslation(datetimeTag, datetimeText, true)
}

// registerCustomTranslation registers an English message for a validation tag.
func registerCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func usernameValidation(fl validator.FieldLevel) bool {
	return usernameRegex.MatchString(fl.Field().String())
}

func notNumericValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return strings.TrimLeft(s, "0123456789") != ""
}

func catalogSlugValidation(fl validator.FieldLevel) bool {
	return slug.Valid(fl.Field().String())
}

func notReservedValidation(fl validator.FieldLevel) bool {
	return !slug.Reserved(fl.Field().String())
}

// registerStructValidation rejects passwords that contain the username.
func registerStructValidation(sl validator.StructLevel) {
	f, ok := sl.Current().Interface().(RegisterForm)
	if !ok || f.Username == "" || f.Password1 == "" {
		return
	}
	if strings.Contains(strings.ToLower(f.Password1), strings.ToLower(f.Username)) {
		sl.ReportError(f.Password1, "password1", "Password1", similarTag, "")
	}
}

// ValidationError carries per-field messages for a rejected form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid form fields: " + strings.Join(names, ", ")
}

// Get returns the message for a field, or "" when the field is valid.
func (e *ValidationError) Get(field string) string {
	if e == nil {
		return ""
	}
	return e.Fields[field]
}

// Validate checks a form struct. It returns nil or a *ValidationError.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		// First failure per field wins.
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = fe.Translate(translator)
		}
	}
	return &ValidationError{Fields: fields}
}

// FieldErrors extracts the per-field messages from err, or nil when err
// is not a validation failure.
func FieldErrors(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
