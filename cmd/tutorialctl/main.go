// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Command tutorialctl is the operator tool for the tutorial site: it runs
// migrations, imports catalog files, creates users and lists the contact
// inbox.
package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"

	"tutorialsite/internal/logging"
)

// globalOptions apply to every command.
type globalOptions struct {
	EnvFile string `long:"env-file" env:"ENV_FILE" default:".env" description:"File with environment variables to load before the configuration"`
	Verbose bool   `short:"v" long:"verbose" description:"Enable debug logging"`
}

var opts globalOptions

func newParser() *flags.Parser {
	parser := flags.NewParser(&opts, flags.Default)
	parser.AddCommand("migrate", "Apply database migrations",
		"Applies every pending migration and prints the schema version.", &migrateCommand{})
	parser.AddCommand("import", "Import a catalog file",
		"Creates or updates the categories, series and tutorials described in a YAML file.", &importCommand{})
	parser.AddCommand("adduser", "Create a user",
		"Creates a member or staff account. The password is prompted for.", &adduserCommand{})
	parser.AddCommand("messages", "List contact messages",
		"Prints the contact inbox, newest first.", &messagesCommand{})
	return parser
}

func main() {
	if _, err := newParser().Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		// go-flags already printed parse errors; command errors are logged.
		if !errors.As(err, &flagsErr) {
			logging.Fatal("command failed", "error", err)
		}
		os.Exit(1)
	}
}
