package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	content := `[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[supabase]
url = "https://example.supabase.co"
service_key = "service-key"
`
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitCreatesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output: %s", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample file missing: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init with --overwrite: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	path := writeTestConfig(t, t.TempDir())

	out, err := runCommand(t, "config", "validate", "--path", path)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "is valid") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestConfigValidateRejectsMissingCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := runCommand(t, "config", "validate", "--path", path); err == nil {
		t.Fatal("validate should reject a config without store credentials")
	}
}

func TestConfigShowRedactsServiceKey(t *testing.T) {
	path := writeTestConfig(t, t.TempDir())

	out, err := runCommand(t, "config", "show", "-c", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "service-key") {
		t.Fatalf("service key leaked in output: %s", out)
	}
	if !strings.Contains(out, "<redacted>") {
		t.Fatalf("expected redaction marker in output: %s", out)
	}
}

func TestStatusWithEmptyJournal(t *testing.T) {
	path := writeTestConfig(t, t.TempDir())

	out, err := runCommand(t, "status", "-c", path)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "No runs recorded yet.") {
		t.Fatalf("unexpected output: %s", out)
	}
}
