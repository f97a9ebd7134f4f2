package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()
	cfg := Default()
	if cfg.Server.Address != ":8080" {
		t.Fatalf("unexpected address %q", cfg.Server.Address)
	}
	if cfg.Server.AuthEnabled() {
		t.Fatalf("auth must be disabled without a secret")
	}
	if cfg.Clusters.EngagementThreshold != 0.5 || cfg.Clusters.SimilarityThreshold != 0.3 {
		t.Fatalf("unexpected cluster thresholds %+v", cfg.Clusters)
	}
	if cfg.Clusters.SessionGap != 45*time.Minute || cfg.Missions.Window != 10*time.Minute {
		t.Fatalf("unexpected windows %+v %+v", cfg.Clusters, cfg.Missions)
	}
	if cfg.Telemetry.Namespace != "daydigest" || !cfg.Telemetry.Enabled {
		t.Fatalf("unexpected telemetry %+v", cfg.Telemetry)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "daydigest.yaml", `
server:
  address: ":9090"
  jwt_secret: "s3cret"
clusters:
  similarity_threshold: 0.4
  session_gap: 30m
missions:
  window: 5m
tasks:
  topic_rules:
    - pattern: "\\bzig\\b"
      label: zig
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Address != ":9090" || !cfg.Server.AuthEnabled() {
		t.Fatalf("unexpected server %+v", cfg.Server)
	}
	if cfg.Clusters.SimilarityThreshold != 0.4 || cfg.Clusters.SessionGap != 30*time.Minute {
		t.Fatalf("unexpected clusters %+v", cfg.Clusters)
	}
	if cfg.Clusters.EngagementThreshold != 0.5 {
		t.Fatalf("unset engagement threshold should keep default, got %v", cfg.Clusters.EngagementThreshold)
	}
	opts, err := cfg.SemanticOptions()
	if err != nil {
		t.Fatalf("SemanticOptions() error = %v", err)
	}
	if opts.MissionWindow != 5*time.Minute || len(opts.TopicRules) != 1 || opts.TopicRules[0].Label != "zig" {
		t.Fatalf("unexpected semantic options %+v", opts)
	}
	if !opts.TopicRules[0].Pattern.MatchString("Learning ZIG today") {
		t.Fatalf("topic rule should match case-insensitively")
	}
}

func TestLoadConfigKeepsExplicitZeroThresholds(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "daydigest.yaml", `
clusters:
  engagement_threshold: 0
  similarity_threshold: 0
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Clusters.EngagementThreshold != 0 || cfg.Clusters.SimilarityThreshold != 0 {
		t.Fatalf("explicit zero thresholds were replaced: %+v", cfg.Clusters)
	}
	if cfg.Clusters.SessionGap != 45*time.Minute {
		t.Fatalf("unset session gap should keep default, got %v", cfg.Clusters.SessionGap)
	}
	opts, err := cfg.SemanticOptions()
	if err != nil {
		t.Fatalf("SemanticOptions() error = %v", err)
	}
	if opts.Clusters == nil {
		t.Fatalf("configured cluster options must be passed through")
	}
	if opts.Clusters.EngagementThreshold != 0 || opts.Clusters.SimilarityThreshold != 0 {
		t.Fatalf("semantic options lost zero thresholds: %+v", *opts.Clusters)
	}
}

func TestLoadConfigJSON(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "daydigest.json", `{"general":{"debug":true},"telemetry":{"enabled":false}}`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !cfg.General.Debug || cfg.Telemetry.Enabled {
		t.Fatalf("unexpected config %+v", cfg)
	}
	opts, err := cfg.SemanticOptions()
	if err != nil {
		t.Fatalf("SemanticOptions() error = %v", err)
	}
	if opts.TopicRules != nil {
		t.Fatalf("no configured rules should select the built-in vocabulary")
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DAYDIGEST_SERVER_ADDRESS", "127.0.0.1:7000")
	t.Setenv("DAYDIGEST_MISSIONS_WINDOW", "15m")
	path := writeConfig(t, "daydigest.yaml", "server:\n  address: \":9090\"\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Address != "127.0.0.1:7000" {
		t.Fatalf("env should override file, got %q", cfg.Server.Address)
	}
	if cfg.Missions.Window != 15*time.Minute {
		t.Fatalf("env should override default, got %v", cfg.Missions.Window)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
		want string
	}{
		{"threshold", "clusters:\n  similarity_threshold: 1.5\n", "clusters.similarity_threshold"},
		{"bad pattern", "tasks:\n  topic_rules:\n    - pattern: \"(\"\n      label: broken\n", "tasks.topic_rules"},
		{"empty label", "tasks:\n  topic_rules:\n    - pattern: go\n      label: \"\"\n", "tasks.topic_rules"},
		{"namespace", "telemetry:\n  namespace: \"day digest\"\n", "telemetry.namespace"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadConfig(writeConfig(t, "daydigest.yaml", tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for an explicit missing file")
	}
}

func TestServerBodyLimit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   int64
		want string
	}{
		{0, "8M"},
		{2 << 20, "2M"},
		{512 << 10, "512K"},
		{1000, "1000B"},
	}
	for _, tt := range tests {
		if got := (ServerConfig{MaxBodyBytes: tt.in}).BodyLimit(); got != tt.want {
			t.Fatalf("BodyLimit(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
