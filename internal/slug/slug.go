// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation for catalog entries.
package slug

import (
	"regexp"

	gosimple "github.com/gosimple/slug"
)

// valid matches the slugs the catalog accepts in URLs: lowercase ASCII
// words separated by single hyphens.
var valid = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	return gosimple.Make(s)
}

// Valid reports whether s is usable as a catalog slug as-is.
func Valid(s string) bool {
	return valid.MatchString(s)
}

// reserved are the first path segments taken by fixed site routes. A
// category or tutorial with one of these slugs could never be reached.
var reserved = map[string]bool{
	"account":  true,
	"admin":    true,
	"contact":  true,
	"health":   true,
	"login":    true,
	"logout":   true,
	"register": true,
	"search":   true,
	"static":   true,
}

// Reserved reports whether s collides with a fixed site route.
func Reserved(s string) bool {
	return reserved[s]
}
