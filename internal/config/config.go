package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when no path is given.
const DefaultPath = "pillarsite.yaml"

// Config represents the application configuration.
type Config struct {
	ContentDir  string `yaml:"content_dir"`
	TemplateDir string `yaml:"template_dir"`
	AssetsDir   string `yaml:"assets_dir"`
	OutputDir   string `yaml:"output_dir"`
	CNAMEFile   string `yaml:"cname_file"`
	DefaultTag  string `yaml:"default_tag"`
	RecentPosts int    `yaml:"recent_posts"`

	Site    SiteConfig    `yaml:"site"`
	Build   BuildConfig   `yaml:"build"`
	Serve   ServeConfig   `yaml:"serve"`
	History HistoryConfig `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig holds values shared by every page template.
type SiteConfig struct {
	Title       string   `yaml:"title"`
	Author      string   `yaml:"author,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Nav         []string `yaml:"nav"`
	HomeNav     string   `yaml:"home_nav"`
	PillarNav   string   `yaml:"pillar_nav"`
}

// BuildConfig tunes the build orchestrator.
type BuildConfig struct {
	Workers int `yaml:"workers"`
	// UseGit is a pointer so an explicit false survives defaulting.
	UseGit *bool `yaml:"use_git,omitempty"`
}

// GitEnabled reports whether git timestamps should be looked up.
func (b BuildConfig) GitEnabled() bool {
	return b.UseGit == nil || *b.UseGit
}

// ServeConfig configures the development server.
type ServeConfig struct {
	Port        int    `yaml:"port"`
	Metrics     bool   `yaml:"metrics"`
	MetricsPath string `yaml:"metrics_path"`
}

// HistoryConfig configures the optional build ledger. An empty path disables it.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether build history is recorded.
func (h HistoryConfig) Enabled() bool { return h.Path != "" }

// LoggingConfig selects log verbosity and format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load loads configuration from the specified file. A missing file yields
// the defaults so the tool works without any configuration.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	var cfg Config
	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := validateLogging(cfg.Logging); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Init creates a new configuration file populated with defaults.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Default()
	example.Site.Title = "My Knowledge Library"
	example.Site.Author = "Your Name"
	example.Site.Description = "Notes organized into pillars"

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
