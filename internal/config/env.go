package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// EnvLogLevel overrides logging.level when set.
const EnvLogLevel = "PILLARSITE_LOG_LEVEL"

// loadEnvFiles loads .env.local then .env. godotenv never overrides
// variables already present in the process environment, so .env.local wins.
func loadEnvFiles() error {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.Logging.Level = NormalizeLogLevel(lvl)
	}
}
