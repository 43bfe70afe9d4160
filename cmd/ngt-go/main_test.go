package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestRun(t *testing.T) {
	t.Run("should render a template against a context", func(t *testing.T) {
		tmpl := writeFile(t, "page.html", `<ul><li ng-if="user.admin">admin</li><li bind-title="user.name"></li></ul>`)
		ctx := writeFile(t, "ctx.json", `{"user": {"name": "ada", "admin": true}}`)
		var stdout, stderr bytes.Buffer
		if code := run([]string{"render", "-context", ctx, "-log-level", "error", tmpl}, &stdout, &stderr); code != 0 {
			t.Fatalf("Expected exit 0, got %d: %s", code, stderr.String())
		}
		want := `<ul><!--template--><li>admin</li><li title="ada"></li></ul>` + "\n"
		if diff := cmp.Diff(want, stdout.String()); diff != "" {
			t.Errorf("output mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should check templates", func(t *testing.T) {
		tmpl := writeFile(t, "page.html", `<p ng-if="x"></p>`)
		var stdout, stderr bytes.Buffer
		if code := run([]string{"check", tmpl}, &stdout, &stderr); code != 0 {
			t.Fatalf("Expected exit 0, got %d: %s", code, stderr.String())
		}
		if !strings.HasSuffix(stdout.String(), ": ok\n") {
			t.Errorf("Expected ok, got %q", stdout.String())
		}
	})

	t.Run("should fail on bad input", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		if code := run(nil, &stdout, &stderr); code != 1 {
			t.Errorf("Expected exit 1 without a command, got %d", code)
		}
		if code := run([]string{"render"}, &stdout, &stderr); code != 2 {
			t.Errorf("Expected exit 2 without a template, got %d", code)
		}
		if code := run([]string{"render", filepath.Join(t.TempDir(), "missing.html")}, &stdout, &stderr); code != 1 {
			t.Errorf("Expected exit 1 for a missing template, got %d", code)
		}
		bad := writeFile(t, "ctx.json", `{`)
		tmpl := writeFile(t, "page.html", `<p></p>`)
		if code := run([]string{"render", "-context", bad, tmpl}, &stdout, &stderr); code != 1 {
			t.Errorf("Expected exit 1 for a bad context, got %d", code)
		}
	})

	t.Run("should print help", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		if code := run([]string{"help"}, &stdout, &stderr); code != 0 || !strings.Contains(stdout.String(), "Usage: ngt-go") {
			t.Errorf("Expected usage, got %d %q", code, stdout.String())
		}
	})
}
