package main

import (
	"os"
	"strings"
)

// Config carries everything decided at startup, including which storage
// and auth backends run (demo mode is a configuration-time choice, never
// a per-call branch).
type Config struct {
	Port           string
	DBPath         string
	JWTSecret      string
	DemoMode       bool
	ChatWebhookURL string
	AllowedOrigins []string
}

func LoadConfig() Config {
	cfg := Config{
		Port:           os.Getenv("PORT"),
		DBPath:         os.Getenv("JOBDECK_DB"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		DemoMode:       os.Getenv("DEMO_MODE") == "true",
		ChatWebhookURL: os.Getenv("CHAT_WEBHOOK_URL"),
	}

	if cfg.Port == "" {
		cfg.Port = "3001"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./jobdeck.db"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "your-default-secret-key-change-in-production"
	}

	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		cfg.AllowedOrigins = []string{"*"}
	} else {
		for _, o := range strings.Split(origins, ",") {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, strings.TrimSpace(o))
		}
	}

	return cfg
}
