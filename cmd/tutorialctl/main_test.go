package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/jessevdk/go-flags"
)

func TestParser_Commands(t *testing.T) {
	parser := newParser()
	for _, name := range []string{"migrate", "import", "adduser", "messages"} {
		if parser.Find(name) == nil {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestParser_ImportRequiresFile(t *testing.T) {
	parser := newParser()
	parser.Options = flags.None

	_, err := parser.ParseArgs([]string{"import"})
	var flagsErr *flags.Error
	if !errors.As(err, &flagsErr) || flagsErr.Type != flags.ErrRequired {
		t.Fatalf("got %v, want a required-flag error", err)
	}
}

func TestImport_DryRunRejectsMissingFile(t *testing.T) {
	cmd := &importCommand{File: "does-not-exist.yaml", DryRun: true}
	if err := cmd.Execute(nil); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"s3cret-pass\n", "s3cret-pass", false},
		{"no-newline", "no-newline", false},
		{"windows\r\n", "windows", false},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := readLine(strings.NewReader(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("readLine(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("readLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
