// Package config provides application-wide configuration loaded from env vars,
// optionally overlaid with a YAML file. All fields have safe defaults so the
// binary runs locally without any env setup.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for SnapJournal.
type Config struct {
	// HTTP server
	HTTPAddr string `yaml:"http_addr"` // SNAPJOURNAL_ADDR — default: "127.0.0.1:8780"

	// Storage
	DBPath string `yaml:"db_path"` // SNAPJOURNAL_DB — default: "snapjournal.db"

	// AI
	AIBackend     string `yaml:"ai_backend"`      // SNAPJOURNAL_AI_BACKEND — "http-runner" or "process-binary"
	AILocation    string `yaml:"ai_location"`     // SNAPJOURNAL_AI_LOCATION — runner URL or binary path
	EmbeddingModel string `yaml:"embedding_model"` // SNAPJOURNAL_EMBED_MODEL — default: "nomic-embed-text"
	ChatModel     string `yaml:"chat_model"`      // SNAPJOURNAL_CHAT_MODEL — default: "llama3.2"

	// GitHub feedback
	GitHubOwner string `yaml:"github_owner"` // SNAPJOURNAL_GITHUB_OWNER — default: "mhsenkow"
	GitHubRepo  string `yaml:"github_repo"`  // SNAPJOURNAL_GITHUB_REPO — default: "myfacesnapjournal"
	GitHubToken string `yaml:"github_token"` // GITHUB_TOKEN — empty means unauthenticated reads only
}

const (
	envKeyHTTPAddr       = "SNAPJOURNAL_ADDR"
	envKeyDBPath         = "SNAPJOURNAL_DB"
	envKeyAIBackend      = "SNAPJOURNAL_AI_BACKEND"
	envKeyAILocation     = "SNAPJOURNAL_AI_LOCATION"
	envKeyEmbeddingModel = "SNAPJOURNAL_EMBED_MODEL"
	envKeyChatModel      = "SNAPJOURNAL_CHAT_MODEL"
	envKeyGitHubOwner    = "SNAPJOURNAL_GITHUB_OWNER"
	envKeyGitHubRepo     = "SNAPJOURNAL_GITHUB_REPO"
	envKeyGitHubToken    = "GITHUB_TOKEN"
)

// Load reads configuration from environment variables, applying defaults for missing values.
func Load() Config {
	return Config{
		HTTPAddr:       envOr(envKeyHTTPAddr, "127.0.0.1:8780"),
		DBPath:         envOr(envKeyDBPath, "snapjournal.db"),
		AIBackend:      envOr(envKeyAIBackend, "http-runner"),
		AILocation:     os.Getenv(envKeyAILocation),
		EmbeddingModel: envOr(envKeyEmbeddingModel, "nomic-embed-text"),
		ChatModel:      envOr(envKeyChatModel, "llama3.2"),
		GitHubOwner:    envOr(envKeyGitHubOwner, "mhsenkow"),
		GitHubRepo:     envOr(envKeyGitHubRepo, "myfacesnapjournal"),
		GitHubToken:    os.Getenv(envKeyGitHubToken),
	}
}

// LoadFile starts from Load and overlays non-empty values from a YAML config
// file. Env vars win only when the file leaves a field empty, so an explicit
// file is the single source of truth for deployments that ship one.
func LoadFile(path string) (Config, error) {
	cfg := Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	merge(&cfg.HTTPAddr, overlay.HTTPAddr)
	merge(&cfg.DBPath, overlay.DBPath)
	merge(&cfg.AIBackend, overlay.AIBackend)
	merge(&cfg.AILocation, overlay.AILocation)
	merge(&cfg.EmbeddingModel, overlay.EmbeddingModel)
	merge(&cfg.ChatModel, overlay.ChatModel)
	merge(&cfg.GitHubOwner, overlay.GitHubOwner)
	merge(&cfg.GitHubRepo, overlay.GitHubRepo)
	merge(&cfg.GitHubToken, overlay.GitHubToken)

	return cfg, nil
}

func merge(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
