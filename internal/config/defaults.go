package config

const (
	defaultContentDir  = "./content"
	defaultTemplateDir = "./templates"
	defaultAssetsDir   = "./assets"
	defaultOutputDir   = "./docs"
	defaultCNAMEFile   = "./CNAME"
	defaultTag         = "General"
	defaultRecentPosts = 5
	defaultWorkers     = 4
	defaultPort        = 3000
	defaultMetricsPath = "/metrics"
	defaultSiteTitle   = "Library"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.ContentDir == "" {
		cfg.ContentDir = defaultContentDir
	}
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = defaultTemplateDir
	}
	if cfg.AssetsDir == "" {
		cfg.AssetsDir = defaultAssetsDir
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaultOutputDir
	}
	if cfg.CNAMEFile == "" {
		cfg.CNAMEFile = defaultCNAMEFile
	}
	if cfg.DefaultTag == "" {
		cfg.DefaultTag = defaultTag
	}
	if cfg.RecentPosts == 0 {
		cfg.RecentPosts = defaultRecentPosts
	}

	if cfg.Site.Title == "" {
		cfg.Site.Title = defaultSiteTitle
	}
	if len(cfg.Site.Nav) == 0 {
		cfg.Site.Nav = []string{"home", "learn", "blog"}
	}
	if cfg.Site.HomeNav == "" {
		cfg.Site.HomeNav = "home"
	}
	if cfg.Site.PillarNav == "" {
		cfg.Site.PillarNav = "learn"
	}

	if cfg.Build.Workers == 0 {
		cfg.Build.Workers = defaultWorkers
	}
	if cfg.Build.UseGit == nil {
		useGit := true
		cfg.Build.UseGit = &useGit
	}

	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = defaultPort
	}
	if cfg.Serve.MetricsPath == "" {
		cfg.Serve.MetricsPath = defaultMetricsPath
	}

	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
}
