// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown turns tutorial bodies into HTML. Bodies are either
// staff-authored HTML, which is served as stored, or Markdown, which is
// converted with goldmark and gets syntax-highlighted code blocks.
package markdown

import (
	"bytes"
	"html/template"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		// Tutorials mix Markdown with inline HTML snippets.
		html.WithUnsafe(),
	),
)

// ToHTML converts Markdown source into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// IsHTML reports whether a body is stored as HTML rather than Markdown.
func IsHTML(source string) bool {
	return strings.HasPrefix(strings.TrimSpace(source), "<")
}

// Content renders a tutorial body for a template. Content is authored by
// staff through the import tool, so it is trusted.
func Content(source string) template.HTML {
	if IsHTML(source) {
		return template.HTML(source)
	}
	out, err := ToHTML(source)
	if err != nil {
		slog.Error("markdown render failed", "error", err)
		return template.HTML("<pre>" + template.HTMLEscapeString(source) + "</pre>")
	}
	return template.HTML(out)
}
