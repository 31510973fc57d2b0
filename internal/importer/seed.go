// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package importer

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed seed/python_basics.yaml
var pythonBasics []byte

// SeedDevelopment imports the bundled sample catalog when the database has
// no categories yet. It is a no-op on a populated database.
func (im *Importer) SeedDevelopment(ctx context.Context) error {
	n, err := im.catalog.Categories.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if n > 0 {
		slog.Info("catalog already populated, skipping sample import")
		return nil
	}

	doc, err := Parse(bytes.NewReader(pythonBasics))
	if err != nil {
		return fmt.Errorf("parse sample catalog: %w", err)
	}

	res, err := im.Import(ctx, doc)
	if err != nil {
		return fmt.Errorf("import sample catalog: %w", err)
	}

	slog.Info("sample catalog imported",
		"categories", res.Categories,
		"series", res.Series,
		"tutorials", res.Tutorials,
	)
	return nil
}
