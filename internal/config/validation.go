package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
)

// ValidateConfig checks the configuration for values the builder cannot work with.
func ValidateConfig(cfg *Config) error {
	if err := validatePaths(cfg); err != nil {
		return err
	}
	if cfg.RecentPosts < 0 {
		return fmt.Errorf("recent_posts must be >= 0, got %d", cfg.RecentPosts)
	}
	if cfg.Build.Workers < 1 {
		return fmt.Errorf("build.workers must be >= 1, got %d", cfg.Build.Workers)
	}
	if cfg.Serve.Port < 1 || cfg.Serve.Port > 65535 {
		return fmt.Errorf("serve.port out of range: %d", cfg.Serve.Port)
	}
	return validateNav(&cfg.Site)
}

var dirFields = []string{"content_dir", "template_dir", "assets_dir"}

func validatePaths(cfg *Config) error {
	dirs := map[string]string{
		"content_dir":  cfg.ContentDir,
		"template_dir": cfg.TemplateDir,
		"assets_dir":   cfg.AssetsDir,
	}
	if cfg.OutputDir == "" {
		return errors.New("output_dir cannot be empty")
	}
	out := filepath.Clean(cfg.OutputDir)
	for _, name := range dirFields {
		if dirs[name] == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
		if filepath.Clean(dirs[name]) == out {
			return fmt.Errorf("output_dir must differ from %s (%s)", name, dirs[name])
		}
	}
	return nil
}

func validateNav(site *SiteConfig) error {
	seen := make(map[string]bool, len(site.Nav))
	for _, target := range site.Nav {
		if target == "" {
			return errors.New("site.nav contains an empty target")
		}
		if seen[target] {
			return fmt.Errorf("duplicate site.nav target: %s", target)
		}
		seen[target] = true
	}
	if !slices.Contains(site.Nav, site.HomeNav) {
		return fmt.Errorf("site.home_nav %q is not declared in site.nav", site.HomeNav)
	}
	if !slices.Contains(site.Nav, site.PillarNav) {
		return fmt.Errorf("site.pillar_nav %q is not declared in site.nav", site.PillarNav)
	}
	return nil
}
