package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env.local then .env if present.
// godotenv never overrides variables that are already set, so the process
// environment wins over .env.local, which wins over .env.
// Returns the files that were loaded.
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	return loaded
}

// ConfigPath returns configs/config.<APP_ENV>.yaml, defaulting APP_ENV to local
func ConfigPath() string {
	return "configs/config." + AppEnv() + ".yaml"
}

// AppEnv returns APP_ENV or "local"
func AppEnv() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return "local"
}
