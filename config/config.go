package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mohammad-safakhou/daydigest/internal/clusters"
	"github.com/mohammad-safakhou/daydigest/internal/missions"
	"github.com/mohammad-safakhou/daydigest/internal/semantic"
	"github.com/mohammad-safakhou/daydigest/internal/tasks"
)

// EnvPrefix is prepended to every environment override (DAYDIGEST_SERVER_ADDRESS, ...).
const EnvPrefix = "DAYDIGEST"

// Config holds all configuration for the digest engine and its host surfaces
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Clusters  ClustersConfig  `mapstructure:"clusters"`
	Missions  MissionsConfig  `mapstructure:"missions"`
	Tasks     TasksConfig     `mapstructure:"tasks"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address      string `mapstructure:"address"`
	JWTSecret    string `mapstructure:"jwt_secret"` // empty disables auth
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
}

// AuthEnabled reports whether API requests must carry a bearer token.
func (s ServerConfig) AuthEnabled() bool {
	return strings.TrimSpace(s.JWTSecret) != ""
}

// Normalize applies defaults for unset server values.
func (s ServerConfig) Normalize() ServerConfig {
	s.Address = strings.TrimSpace(s.Address)
	if s.Address == "" {
		s.Address = ":8080"
	}
	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = 8 << 20
	}
	return s
}

// BodyLimit renders MaxBodyBytes in the form echo's BodyLimit middleware expects.
func (s ServerConfig) BodyLimit() string {
	n := s.Normalize().MaxBodyBytes
	if n%(1<<20) == 0 {
		return fmt.Sprintf("%dM", n>>20)
	}
	if n%(1<<10) == 0 {
		return fmt.Sprintf("%dK", n>>10)
	}
	return fmt.Sprintf("%dB", n)
}

// TelemetryConfig contains metrics settings
type TelemetryConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

func (t TelemetryConfig) Validate() error {
	if strings.ContainsAny(t.Namespace, " -.") {
		return fmt.Errorf("telemetry.namespace %q must be a valid metric name prefix", t.Namespace)
	}
	return nil
}

// ClustersConfig tunes article clustering.
type ClustersConfig struct {
	EngagementThreshold float64       `mapstructure:"engagement_threshold"`
	SimilarityThreshold float64       `mapstructure:"similarity_threshold"`
	SessionGap          time.Duration `mapstructure:"session_gap"`
}

// Validate rejects thresholds outside [0,1] and negative gaps.
func (c ClustersConfig) Validate() error {
	if c.EngagementThreshold < 0 || c.EngagementThreshold > 1 {
		return fmt.Errorf("clusters.engagement_threshold must be within [0,1], got %v", c.EngagementThreshold)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("clusters.similarity_threshold must be within [0,1], got %v", c.SimilarityThreshold)
	}
	if c.SessionGap < 0 {
		return fmt.Errorf("clusters.session_gap cannot be negative")
	}
	return nil
}

// MissionsConfig tunes search-mission chaining.
type MissionsConfig struct {
	Window time.Duration `mapstructure:"window"`
}

func (m MissionsConfig) Validate() error {
	if m.Window < 0 {
		return fmt.Errorf("missions.window cannot be negative")
	}
	return nil
}

// TasksConfig overrides the topic vocabulary used for task sessions.
type TasksConfig struct {
	TopicRules []TopicRuleConfig `mapstructure:"topic_rules"`
}

// TopicRuleConfig is one ordered {pattern, label} entry.
type TopicRuleConfig struct {
	Pattern string `mapstructure:"pattern"`
	Label   string `mapstructure:"label"`
}

// Compile returns the configured rules, or nil to select the built-in vocabulary.
func (t TasksConfig) Compile() ([]tasks.TopicRule, error) {
	if len(t.TopicRules) == 0 {
		return nil, nil
	}
	pairs := make([][2]string, len(t.TopicRules))
	for i, r := range t.TopicRules {
		pairs[i] = [2]string{r.Pattern, r.Label}
	}
	rules, err := tasks.CompileTopicRules(pairs)
	if err != nil {
		return nil, fmt.Errorf("tasks.topic_rules: %w", err)
	}
	return rules, nil
}

// Normalize fills unset values with defaults. Cluster thresholds are taken as
// loaded: viper supplies their defaults and zero is a meaningful value.
func (c *Config) Normalize() {
	c.Server = c.Server.Normalize()
	if c.Missions.Window <= 0 {
		c.Missions.Window = missions.DefaultWindow
	}
	if strings.TrimSpace(c.Telemetry.Namespace) == "" {
		c.Telemetry.Namespace = "daydigest"
	}
	if strings.TrimSpace(c.General.LogLevel) == "" {
		c.General.LogLevel = "info"
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Clusters.Validate(); err != nil {
		return err
	}
	if err := c.Missions.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if _, err := c.Tasks.Compile(); err != nil {
		return err
	}
	return nil
}

// SemanticOptions maps the engine sections onto extractor options. Logger and
// Metrics are left for the caller to attach.
func (c *Config) SemanticOptions() (semantic.Options, error) {
	rules, err := c.Tasks.Compile()
	if err != nil {
		return semantic.Options{}, err
	}
	return semantic.Options{
		Clusters: &clusters.Options{
			EngagementThreshold: c.Clusters.EngagementThreshold,
			SimilarityThreshold: c.Clusters.SimilarityThreshold,
			SessionGap:          c.Clusters.SessionGap,
		},
		MissionWindow: c.Missions.Window,
		TopicRules:    rules,
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.debug", false)
	v.SetDefault("general.log_level", "info")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.max_body_bytes", 8<<20)
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.namespace", "daydigest")
	v.SetDefault("clusters.engagement_threshold", clusters.DefaultEngagementThreshold)
	v.SetDefault("clusters.similarity_threshold", clusters.DefaultSimilarityThreshold)
	v.SetDefault("clusters.session_gap", clusters.DefaultSessionGap)
	v.SetDefault("missions.window", missions.DefaultWindow)
}

// Default returns the configuration used when no file or environment override is present.
func Default() *Config {
	cfg, err := load(viper.New(), "")
	if err != nil {
		// defaults alone always decode and validate
		panic(err)
	}
	return cfg
}

// LoadConfig loads config from path, or searches the usual locations for a
// daydigest.{json,yaml,yml} file when path is empty. A missing file in search
// mode is not an error: defaults and DAYDIGEST_* variables still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("daydigest")
	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if exe, err := os.Executable(); err == nil {
			exeDir := filepath.Dir(exe)
			v.AddConfigPath(exeDir)
			v.AddConfigPath(filepath.Join(exeDir, "..", "config"))
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return load(v, path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", displayPath(path), err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func displayPath(path string) string {
	if path == "" {
		return "(defaults)"
	}
	return path
}
