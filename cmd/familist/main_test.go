package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/familist/internal/config"
	"github.com/dukerupert/familist/internal/database"
	"github.com/dukerupert/familist/internal/email"
	"github.com/dukerupert/familist/internal/model"
	"github.com/dukerupert/familist/internal/server"
)

type discardMailer struct{}

func (discardMailer) Send(context.Context, email.Message) error { return nil }

type cli struct {
	url   string
	state string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		TokenTTL:         time.Hour,
		ReminderHour:     22,
		ReminderLocation: time.UTC,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(server.New(db, cfg, discardMailer{}, logger).Router())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	return &cli{url: ts.URL, state: filepath.Join(dir, "state.json")}
}

// run executes one CLI invocation. Each call builds a fresh root command,
// so state only carries over through the state file.
func (c *cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FAMILIST_STATE_FILE", c.state)
	root := newRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(""))
	full := append([]string{"--api-url", c.url, "--config", filepath.Join(filepath.Dir(c.state), "none.yaml")}, args...)
	root.SetArgs(full)
	err := root.Execute()
	return out.String(), err
}

func (c *cli) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := c.run(t, args...)
	if err != nil {
		t.Fatalf("familist %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestGuardedCommandsNeedLogin(t *testing.T) {
	c := newCLI(t)
	_, err := c.run(t, "tasks", "board")
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("err = %v, want not logged in", err)
	}
}

func TestFamilyRequiredAfterRegister(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun(t, "register", "-e", "alice@example.com", "-p", "secret123", "-n", "Alice")
	if !strings.Contains(out, "Signed in as Alice") {
		t.Errorf("register output = %q", out)
	}
	if !strings.Contains(out, "not in a family") {
		t.Errorf("register output should point to family setup: %q", out)
	}

	_, err := c.run(t, "tasks", "board")
	if err == nil || !strings.Contains(err.Error(), "not in a family") {
		t.Fatalf("err = %v, want family setup redirect", err)
	}
}

func TestTaskWorkflow(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "register", "-e", "alice@example.com", "-p", "secret123", "-n", "Alice")
	out := c.mustRun(t, "family", "create", "Cohen")
	if !strings.Contains(out, "admin of Cohen") {
		t.Errorf("family create output = %q", out)
	}

	out = c.mustRun(t, "--json", "tasks", "create", "Buy", "milk", "-p", "high", "--due", "2026-10-20")
	var task model.Task
	if err := json.Unmarshal([]byte(out), &task); err != nil {
		t.Fatalf("decode task: %v (%q)", err, out)
	}
	if task.Title != "Buy milk" || task.Priority != model.PriorityHigh || task.DueDate == nil {
		t.Errorf("task = %+v", task)
	}

	id := formatInt(task.ID)
	c.mustRun(t, "tasks", "volunteer", id)
	out = c.mustRun(t, "tasks", "board")
	if !strings.Contains(out, "== My tasks ==") || !strings.Contains(out, "Buy milk") {
		t.Errorf("board output = %q", out)
	}

	c.mustRun(t, "tasks", "complete", id)
	out = c.mustRun(t, "tasks", "history", id)
	for _, action := range []string{"created", "volunteered", "completed"} {
		if !strings.Contains(out, action) {
			t.Errorf("history missing %q: %q", action, out)
		}
	}

	out = c.mustRun(t, "reports", "fairness")
	if !strings.Contains(out, "Alice") || !strings.Contains(out, "#") {
		t.Errorf("fairness output = %q", out)
	}
}

func TestEditClearsDueDate(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "register", "-e", "alice@example.com", "-p", "secret123")
	c.mustRun(t, "family", "create", "Cohen")
	out := c.mustRun(t, "--json", "tasks", "create", "Call", "grandma", "--due", "2026-10-20")
	var task model.Task
	if err := json.Unmarshal([]byte(out), &task); err != nil {
		t.Fatal(err)
	}

	out = c.mustRun(t, "--json", "tasks", "edit", formatInt(task.ID), "--clear-due")
	var edited model.Task
	if err := json.Unmarshal([]byte(out), &edited); err != nil {
		t.Fatal(err)
	}
	if edited.DueDate != nil {
		t.Errorf("due date = %v, want cleared", edited.DueDate)
	}
}

func TestCalendarShowsEvents(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "register", "-e", "alice@example.com", "-p", "secret123")
	c.mustRun(t, "family", "create", "Cohen")
	c.mustRun(t, "family-events", "add", "Trip", "--start", "2026-10-14", "--end", "2026-10-16")

	out := c.mustRun(t, "calendar", "week", "--date", "2026-10-15")
	if !strings.Contains(out, "Trip") {
		t.Fatalf("calendar output = %q", out)
	}
	if n := strings.Count(out, "[event"); n != 3 {
		t.Errorf("event shown on %d days, want 3: %q", n, out)
	}

	out = c.mustRun(t, "calendar", "week", "--date", "2026-10-15", "--offset", "1")
	if !strings.Contains(out, "Nothing scheduled") {
		t.Errorf("next week output = %q", out)
	}
}

func TestLogoutForgetsSession(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "register", "-e", "alice@example.com", "-p", "secret123")
	c.mustRun(t, "logout")

	data, err := os.ReadFile(c.state)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "token") {
		t.Errorf("state still holds a token: %s", data)
	}
	if _, err := c.run(t, "whoami"); err == nil {
		t.Error("whoami succeeded after logout")
	}
}

func TestPreferences(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "lang", "set", "he")
	out := c.mustRun(t, "lang", "get")
	if !strings.Contains(out, "he (right-to-left)") {
		t.Errorf("lang get = %q", out)
	}

	c.mustRun(t, "debug", "on")
	data, err := os.ReadFile(c.state)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"debug"`) {
		t.Errorf("debug flag not stored: %s", data)
	}
	c.mustRun(t, "debug", "off")
}

func TestBar(t *testing.T) {
	tests := []struct {
		n, top int
		want   string
	}{
		{0, 0, ""},
		{0, 4, ""},
		{4, 4, strings.Repeat("#", barWidth)},
		{1, 4, strings.Repeat("#", barWidth/4)},
	}
	for _, tt := range tests {
		if got := bar(tt.n, tt.top); got != tt.want {
			t.Errorf("bar(%d, %d) = %q, want %q", tt.n, tt.top, got, tt.want)
		}
	}
}
