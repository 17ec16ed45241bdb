package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"  debug ", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseTimeout(t *testing.T) {
	if got := parseTimeout("45s"); got != 45*time.Second {
		t.Errorf("parseTimeout(45s) = %v", got)
	}
	// Bad or nonpositive values fall back to the default.
	for _, in := range []string{"", "nope", "-1s", "0s"} {
		if got := parseTimeout(in); got != 3*time.Minute {
			t.Errorf("parseTimeout(%q) = %v, want 3m", in, got)
		}
	}
}

func TestAIConfigured(t *testing.T) {
	c := &Config{}
	if c.AIConfigured() {
		t.Error("empty URL should report unconfigured")
	}
	c.AIURL = "http://localhost:11434"
	if !c.AIConfigured() {
		t.Error("URL set should report configured")
	}
}

func TestApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: 9090
docker-bin: podman
ai-url: http://ollama:11434
ai-model: llama3
ai-timeout: 90s
log-level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{Port: 5010, DockerBin: "docker"}
	logLevel, aiTimeout := "info", "3m"
	if err := applyFile(cfg, &logLevel, &aiTimeout, path); err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.DockerBin != "podman" {
		t.Errorf("DockerBin = %q", cfg.DockerBin)
	}
	if cfg.AIURL != "http://ollama:11434" || cfg.AIModel != "llama3" {
		t.Errorf("AI settings = %q %q", cfg.AIURL, cfg.AIModel)
	}
	if logLevel != "debug" || aiTimeout != "90s" {
		t.Errorf("logLevel = %q, aiTimeout = %q", logLevel, aiTimeout)
	}
}

func TestApplyFilePartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: 8000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{Port: 5010, DockerBin: "docker"}
	logLevel, aiTimeout := "info", "3m"
	if err := applyFile(cfg, &logLevel, &aiTimeout, path); err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 8000 {
		t.Errorf("Port = %d", cfg.Port)
	}
	// Unset file fields keep their existing values.
	if cfg.DockerBin != "docker" || logLevel != "info" {
		t.Errorf("unset fields changed: %q %q", cfg.DockerBin, logLevel)
	}
}

func TestApplyFileErrors(t *testing.T) {
	cfg := &Config{}
	logLevel, aiTimeout := "info", "3m"

	if err := applyFile(cfg, &logLevel, &aiTimeout, "/nonexistent/config.yaml"); err == nil {
		t.Error("missing file should error")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [not an int\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := applyFile(cfg, &logLevel, &aiTimeout, path); err == nil {
		t.Error("malformed yaml should error")
	}
}
