package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the opaque configuration object handed to the core. Environment
// access happens only here; the pipeline and store never read env vars.
type Config struct {
	Port                string
	DBPath              string
	SenderEmail         string
	ResendAPIKey        string
	AirtableAPIKey      string
	AirtableBaseID      string
	AirtableTableName   string
	ServiceKey          string
	WebhookSecret       string
	CollaboratorTimeout time.Duration
}

// Load reads .env (when present) and the process environment, then validates
// that every collaborator credential is set before the service starts.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("error loading env file %s: %w", envPath, err)
		}
	} else {
		// A missing default .env is fine; the real environment still applies.
		godotenv.Load()
	}

	cfg := &Config{
		Port:                getEnv("PORT", "5000"),
		DBPath:              getEnv("DB_PATH", "../db/fulfillment.db"),
		SenderEmail:         os.Getenv("SENDER_EMAIL"),
		ResendAPIKey:        os.Getenv("RESEND_API_KEY"),
		AirtableAPIKey:      os.Getenv("AIRTABLE_API_KEY"),
		AirtableBaseID:      os.Getenv("AIRTABLE_BASE_ID"),
		AirtableTableName:   getEnv("AIRTABLE_TABLE_NAME", "Products"),
		ServiceKey:          os.Getenv("SERVICE_KEY"),
		WebhookSecret:       os.Getenv("WEBHOOK_SECRET"),
		CollaboratorTimeout: 10 * time.Second,
	}

	if secs := os.Getenv("COLLABORATOR_TIMEOUT_SECONDS"); secs != "" {
		n, err := strconv.Atoi(secs)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid COLLABORATOR_TIMEOUT_SECONDS: %q", secs)
		}
		cfg.CollaboratorTimeout = time.Duration(n) * time.Second
	}

	required := map[string]string{
		"SENDER_EMAIL":     cfg.SenderEmail,
		"RESEND_API_KEY":   cfg.ResendAPIKey,
		"AIRTABLE_API_KEY": cfg.AirtableAPIKey,
		"AIRTABLE_BASE_ID": cfg.AirtableBaseID,
		"SERVICE_KEY":      cfg.ServiceKey,
		"WEBHOOK_SECRET":   cfg.WebhookSecret,
	}
	for name, value := range required {
		if value == "" {
			return nil, fmt.Errorf("missing required environment variable %s", name)
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
