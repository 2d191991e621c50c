package config

import (
	"os"
	"path/filepath"
)

// Config carries everything read from the environment at startup.
type Config struct {
	Port          string
	Env           string
	FrontendURL   string
	SessionSecret string

	DatabaseURL string

	BrevoAPIKey string
	BrevoURL    string
	MailHost    string
	MailPort    string
	MailUser    string
	MailPass    string

	DataDir    string
	ScriptsDir string
	TeamsFile  string
}

func Load() Config {
	return Config{
		Port:          getEnv("PORT", "5000"),
		Env:           getEnv("APP_ENV", "development"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:3000"),
		SessionSecret: getEnv("SESSION_SECRET", "renewal-portal-secret"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		BrevoAPIKey:   getEnv("BREVO_API_KEY", ""),
		BrevoURL:      getEnv("BREVO_URL", "https://api.brevo.com"),
		MailHost:      getEnv("MAIL_HOST", ""),
		MailPort:      getEnv("MAIL_PORT", "587"),
		MailUser:      getEnv("MAIL_USER", ""),
		MailPass:      getEnv("MAIL_PASS", ""),
		DataDir:       getEnv("DATA_DIR", "data"),
		ScriptsDir:    getEnv("SCRIPTS_DIR", "scripts"),
		TeamsFile:     getEnv("TEAMS_FILE", "teams.json"),
	}
}

func (c Config) DevMode() bool {
	return c.Env != "production"
}

// Dir resolves a data subdirectory under DataDir.
func (c Config) Dir(parts ...string) string {
	return filepath.Join(append([]string{c.DataDir}, parts...)...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
