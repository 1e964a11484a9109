package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "output equals templates",
			mutate:  func(c *Config) { c.OutputDir = "templates/" },
			wantErr: "output_dir must differ from template_dir",
		},
		{
			name:    "empty assets dir",
			mutate:  func(c *Config) { c.AssetsDir = "" },
			wantErr: "assets_dir cannot be empty",
		},
		{
			name:    "negative recent posts",
			mutate:  func(c *Config) { c.RecentPosts = -1 },
			wantErr: "recent_posts must be >= 0",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Build.Workers = 0 },
			wantErr: "build.workers must be >= 1",
		},
		{
			name:    "undeclared pillar nav",
			mutate:  func(c *Config) { c.Site.PillarNav = "docs" },
			wantErr: `site.pillar_nav "docs" is not declared`,
		},
		{
			name:    "duplicate nav target",
			mutate:  func(c *Config) { c.Site.Nav = []string{"home", "learn", "home"} },
			wantErr: "duplicate site.nav target: home",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.ContentDir = "content"
			cfg.TemplateDir = "templates"
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeLogLevel(t *testing.T) {
	require.Equal(t, LogLevelWarn, NormalizeLogLevel("Warning"))
	require.Equal(t, LogLevelInfo, NormalizeLogLevel("verbose"))
	require.Equal(t, LogFormatJSON, NormalizeLogFormat(" JSON "))
}

func TestLoggingConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LoggingConfig{Level: LogLevelWarn, Format: LogFormatJSON}.NewLogger(&buf, false)
	logger.Info("hidden")
	logger.Warn("shown", "pillar", "algorithms")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"pillar":"algorithms"`)

	buf.Reset()
	LoggingConfig{Level: LogLevelError, Format: LogFormatText}.NewLogger(&buf, true).Debug("debugging")
	require.Contains(t, buf.String(), "msg=debugging")
}
