// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"tutorialsite/internal/cache"
	"tutorialsite/internal/config"
	"tutorialsite/internal/database"
	"tutorialsite/internal/forms"
	"tutorialsite/internal/importer"
	"tutorialsite/internal/logging"
	"tutorialsite/internal/store"
)

// setup loads the configuration, installs the logger and opens the
// database. The caller closes the returned DB.
func setup() (*config.Config, *sql.DB, error) {
	if err := config.LoadDotEnv(opts.EnvFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if opts.Verbose {
		cfg.LogLevel = "DEBUG"
	}
	if _, err := logging.Setup(cfg); err != nil {
		return nil, nil, err
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

// --- migrate ---

type migrateCommand struct{}

func (c *migrateCommand) Execute([]string) error {
	_, db, err := setup()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	version, err := database.MigrationVersion(db)
	if err != nil {
		return err
	}
	fmt.Printf("database at migration version %d\n", version)
	return nil
}

// --- import ---

type importCommand struct {
	File   string `short:"f" long:"file" required:"true" description:"Catalog YAML file, - for stdin"`
	DryRun bool   `long:"dry-run" description:"Validate the file without writing to the database"`
}

func (c *importCommand) Execute([]string) error {
	doc, err := c.parse()
	if err != nil {
		return err
	}
	if c.DryRun {
		fmt.Printf("%s is valid: %d categories\n", c.File, len(doc.Categories))
		return nil
	}

	cfg, db, err := setup()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	res, err := importer.New(store.NewCatalog(db)).Import(ctx, doc)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d categories, %d series, %d tutorials\n", res.Categories, res.Series, res.Tutorials)

	// Cached catalog pages are stale now. A missing Valkey only means
	// there is nothing to clear.
	client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		slog.Warn("page cache not cleared", "error", err)
		return nil
	}
	defer client.Close()
	n, err := cache.NewPageCache(client, cfg.PageCacheTTL).InvalidateAll(ctx)
	if err != nil {
		slog.Warn("page cache not cleared", "error", err)
		return nil
	}
	slog.Info("page cache cleared", "pages", n)
	return nil
}

func (c *importCommand) parse() (*importer.Document, error) {
	if c.File == "-" {
		return importer.Parse(os.Stdin)
	}
	f, err := os.Open(c.File)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := importer.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.File, err)
	}
	return doc, nil
}

// --- adduser ---

type adduserCommand struct {
	Username string `short:"u" long:"username" required:"true" description:"Login name"`
	Email    string `short:"e" long:"email" required:"true" description:"Email address"`
	Staff    bool   `long:"staff" description:"Grant access to the admin area"`
}

func (c *adduserCommand) Execute([]string) error {
	password, err := readPassword(os.Stdin, os.Stderr)
	if err != nil {
		return err
	}

	form := forms.RegisterForm{
		Username:  strings.TrimSpace(c.Username),
		Email:     strings.TrimSpace(c.Email),
		Password1: password,
		Password2: password,
	}
	if err := forms.Validate(form); err != nil {
		for field, msg := range forms.FieldErrors(err) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
		}
		return err
	}

	_, db, err := setup()
	if err != nil {
		return err
	}
	defer db.Close()

	users := store.NewUserStore(db)
	ctx := context.Background()
	if existing, err := users.FindByUsername(ctx, form.Username); err != nil {
		return err
	} else if existing != nil {
		return fmt.Errorf("user %q already exists", form.Username)
	}

	user, err := users.Create(ctx, form.Username, form.Email, form.Password1, c.Staff)
	if err != nil {
		return err
	}
	fmt.Printf("created user %s (staff: %t)\n", user.Username, user.IsStaff)
	return nil
}

var errPasswordMismatch = errors.New("passwords do not match")

// readPassword prompts twice on a terminal. Piped input is read as a
// single line so the command can be scripted.
func readPassword(in *os.File, prompt io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return readLine(in)
	}

	fmt.Fprint(prompt, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}
	fmt.Fprint(prompt, "Password (again): ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errPasswordMismatch
	}
	return string(first), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// --- messages ---

type messagesCommand struct {
	Unread bool `long:"unread" description:"Only show unread messages"`
}

func (c *messagesCommand) Execute([]string) error {
	_, db, err := setup()
	if err != nil {
		return err
	}
	defer db.Close()

	msgs, err := store.NewContactStore(db).List(context.Background(), c.Unread)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RECEIVED\tREAD\tFROM\tSUBJECT")
	for _, m := range msgs {
		fmt.Fprintf(tw, "%s\t%t\t%s <%s>\t%s\n",
			m.CreatedAt.Format("2006-01-02 15:04"), m.IsRead, m.Name, m.Email, m.Subject)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("%d message(s)\n", len(msgs))
	return nil
}
