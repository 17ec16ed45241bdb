package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port       int
	ReportsDir string // Parent directory for per-task working directories ("" = system temp)
	DockerBin  string // Container runtime CLI binary
	LogLevel   slog.Level

	AIURL     string // Ollama-compatible backend base URL ("" = AI disabled)
	AIModel   string
	AIToken   string        // Optional bearer token for proxied backends
	AITimeout time.Duration // Bound on a single generation call
}

// AIConfigured reports whether an AI backend is configured. Tasks created
// with useAI fall back to the deterministic report when this is false.
func (c *Config) AIConfigured() bool {
	return c.AIURL != ""
}

// fileConfig is the optional YAML config file shape. Every field maps to a
// flag of the same name; flags and env vars take precedence over the file.
type fileConfig struct {
	Port       int    `yaml:"port"`
	ReportsDir string `yaml:"reports-dir"`
	DockerBin  string `yaml:"docker-bin"`
	LogLevel   string `yaml:"log-level"`
	AIURL      string `yaml:"ai-url"`
	AIModel    string `yaml:"ai-model"`
	AIToken    string `yaml:"ai-token"`
	AITimeout  string `yaml:"ai-timeout"`
}

func Parse() *Config {
	cfg := &Config{}

	var (
		logLevel   string
		aiTimeout  string
		configFile string
	)
	flag.IntVar(&cfg.Port, "port", 5010, "HTTP server port")
	flag.StringVar(&cfg.ReportsDir, "reports-dir", "", "Parent directory for report working directories (default: system temp)")
	flag.StringVar(&cfg.DockerBin, "docker-bin", "docker", "Container runtime CLI binary")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.AIURL, "ai-url", "", "Ollama-compatible backend base URL (empty disables AI enhancement)")
	flag.StringVar(&cfg.AIModel, "ai-model", "gemma3:latest", "Model name for AI enhancement")
	flag.StringVar(&cfg.AIToken, "ai-token", "", "Bearer token for the AI backend (optional)")
	flag.StringVar(&aiTimeout, "ai-timeout", "3m", "Timeout for a single AI generation call")
	flag.StringVar(&configFile, "config", "", "Path to YAML config file (flags and env override it)")
	flag.Parse()

	if v := os.Getenv("DOCKREPORT_CONFIG"); v != "" {
		configFile = v
	}
	if configFile != "" {
		if err := applyFile(cfg, &logLevel, &aiTimeout, configFile); err != nil {
			fmt.Fprintf(os.Stderr, "config file %s: %v\n", configFile, err)
			os.Exit(1)
		}
	}

	// Env vars override flags and file (if set)
	if v := os.Getenv("DOCKREPORT_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("DOCKREPORT_REPORTS_DIR"); v != "" {
		cfg.ReportsDir = v
	}
	if v := os.Getenv("DOCKREPORT_DOCKER_BIN"); v != "" {
		cfg.DockerBin = v
	}
	if v := os.Getenv("DOCKREPORT_LOG_LEVEL"); v != "" {
		logLevel = v
	}
	if v := os.Getenv("DOCKREPORT_AI_URL"); v != "" {
		cfg.AIURL = v
	}
	if v := os.Getenv("DOCKREPORT_AI_MODEL"); v != "" {
		cfg.AIModel = v
	}
	if v := os.Getenv("DOCKREPORT_AI_TOKEN"); v != "" {
		cfg.AIToken = v
	}
	if v := os.Getenv("DOCKREPORT_AI_TIMEOUT"); v != "" {
		aiTimeout = v
	}

	cfg.LogLevel = parseLogLevel(logLevel)
	cfg.AITimeout = parseTimeout(aiTimeout)

	return cfg
}

// applyFile merges values from a YAML config file into cfg. Only fields
// whose flags were not explicitly set are overwritten, so flags win.
func applyFile(cfg *Config, logLevel, aiTimeout *string, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if fc.Port != 0 && !set["port"] {
		cfg.Port = fc.Port
	}
	if fc.ReportsDir != "" && !set["reports-dir"] {
		cfg.ReportsDir = fc.ReportsDir
	}
	if fc.DockerBin != "" && !set["docker-bin"] {
		cfg.DockerBin = fc.DockerBin
	}
	if fc.LogLevel != "" && !set["log-level"] {
		*logLevel = fc.LogLevel
	}
	if fc.AIURL != "" && !set["ai-url"] {
		cfg.AIURL = fc.AIURL
	}
	if fc.AIModel != "" && !set["ai-model"] {
		cfg.AIModel = fc.AIModel
	}
	if fc.AIToken != "" && !set["ai-token"] {
		cfg.AIToken = fc.AIToken
	}
	if fc.AITimeout != "" && !set["ai-timeout"] {
		*aiTimeout = fc.AITimeout
	}
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseTimeout(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 3 * time.Minute
	}
	return d
}
