package cmd

import (
	"bytes"
	"strings"
	"testing"

	"tasktree/internal/tasklist"
)

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	if !colorEnabled("always", &buf) {
		t.Error("always should enable color even for a buffer")
	}
	if colorEnabled("never", &buf) {
		t.Error("never should disable color")
	}
	if colorEnabled("auto", &buf) {
		t.Error("auto should disable color for a non-terminal writer")
	}
}

func TestPaint(t *testing.T) {
	var buf bytes.Buffer
	app := &App{Out: &buf}
	if got := app.SuccessColor("✓"); got != "✓" {
		t.Errorf("uncolored output = %q", got)
	}

	app.Color = true
	got := app.StatusColor(tasklist.StatusBlocked, "[!]")
	if !strings.Contains(got, "[!]") || !strings.Contains(got, "\x1b[") {
		t.Errorf("colored output = %q, want ANSI escapes around [!]", got)
	}
}

func TestStatusIcon(t *testing.T) {
	tests := map[tasklist.Status]string{
		tasklist.StatusPending:    "[ ]",
		tasklist.StatusInProgress: "[~]",
		tasklist.StatusCompleted:  "[x]",
		tasklist.StatusBlocked:    "[!]",
	}
	for status, want := range tests {
		if got := statusIcon(status); got != want {
			t.Errorf("statusIcon(%s) = %q, want %q", status, got, want)
		}
	}
}
