package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q

[logging]
level = "error"
`, filepath.Join(base, "data"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConfigInitCommand(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "config.toml")

	stdout, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(stdout, "Wrote sample configuration") {
		t.Errorf("stdout = %q", stdout)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Error("second init without --overwrite succeeded")
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Errorf("init with --overwrite: %v", err)
	}
}

func TestIndexStatusEmptyIndex(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	stdout, _, err := runCLI(t, configPath, "index", "status")
	if err != nil {
		t.Fatalf("index status: %v", err)
	}
	if !strings.Contains(stdout, "Corpus indexed") || !strings.Contains(stdout, "no") {
		t.Errorf("stdout = %q, want an empty-corpus report", stdout)
	}
}

func TestIndexStatusJSONOutput(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	stdout, _, err := runCLI(t, configPath, "index", "status", "--json")
	if err != nil {
		t.Fatalf("index status --json: %v", err)
	}
	var stats struct {
		HasCurrent bool
		TotalRows  int64
	}
	if err := json.Unmarshal([]byte(stdout), &stats); err != nil {
		t.Fatalf("parse json output %q: %v", stdout, err)
	}
	if stats.HasCurrent || stats.TotalRows != 0 {
		t.Errorf("stats = %+v, want an empty index", stats)
	}
}

func TestIndexClearCommand(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	stdout, _, err := runCLI(t, configPath, "index", "clear")
	if err != nil {
		t.Fatalf("index clear: %v", err)
	}
	if !strings.Contains(stdout, "Reference corpus cleared") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestCompareMissingFile(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	if _, _, err := runCLI(t, configPath, "compare", filepath.Join(base, "missing.json")); err == nil {
		t.Error("compare with a missing transcript succeeded")
	}
}

func TestConfigShowCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	stdout, _, err := runCLI(t, "", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(stdout, "# Config path:") {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stdout, "[matching]") {
		t.Errorf("stdout missing matching section: %q", stdout)
	}
}

func TestConfigShowHonorsConfigFlag(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	stdout, _, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(stdout, "# Config path: "+configPath) {
		t.Errorf("stdout = %q, want the explicit config path", stdout)
	}
	if !strings.Contains(stdout, filepath.Join(base, "data")) {
		t.Errorf("stdout = %q, want data_dir from the flagged file", stdout)
	}
}

func TestConfigValidateHonorsConfigFlag(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	stdout, _, err := runCLI(t, configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(stdout, "Config path: "+configPath) {
		t.Errorf("stdout = %q, want the explicit config path", stdout)
	}
	if !strings.Contains(stdout, "Configuration valid") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestIndexStoreRequiresAPIKey(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)
	transcriptPath := filepath.Join(base, "ref.json")
	payload := `{"segments":[{"start":0,"end":2,"text":"hello there"}]}`
	if err := os.WriteFile(transcriptPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "")
	if _, _, err := runCLI(t, configPath, "index", "store", transcriptPath); err == nil {
		t.Error("index store without an API key succeeded")
	}
}
