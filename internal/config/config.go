package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	DBSource  string
	Port      string
	Env       string
	LogLevel  string
	JWTSecret string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string
}

func Load() (*Config, error) {
	dbSource := os.Getenv("DB_SOURCE")
	if dbSource == "" {
		return nil, fmt.Errorf("DB_SOURCE environment variable is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	smtpPort := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", v, err)
		}
		smtpPort = p
	}

	return &Config{
		DBSource:  dbSource,
		Port:      getenv("SERVER_PORT", "8080"),
		Env:       getenv("ENVIRONMENT", "development"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		JWTSecret: jwtSecret,
		SMTPHost:  getenv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:  smtpPort,
		SMTPUser:  os.Getenv("SMTP_USER"),
		SMTPPass:  os.Getenv("SMTP_PASS"),
		MailFrom:  getenv("MAIL_FROM", "eCash Security <no-reply@ecash.com>"),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
