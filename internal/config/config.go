package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// OutputFile maps to OUTPUT_FILE. Created or truncated on every run.
	OutputFile string `envconfig:"OUTPUT_FILE" default:"data.csv"`

	// LogFile maps to LOG_FILE. Opened append-only.
	LogFile string `envconfig:"LOG_FILE" default:"scraper.log"`

	// Delay is the politeness pause after each successful page.
	Delay time.Duration `envconfig:"DELAY" default:"1s"`

	// FetchTimeout of zero means the http client never times out.
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"0s"`

	// UserAgent is only sent when set.
	UserAgent string `envconfig:"USER_AGENT"`

	// Fetcher is "http" or "browser" (headless Chrome).
	Fetcher string `envconfig:"FETCHER" default:"http"`

	RespectRobots bool `envconfig:"RESPECT_ROBOTS" default:"false"`

	// DatabaseURL maps to DB_URL. Records are also saved to Postgres when it is set.
	DatabaseURL string `envconfig:"DB_URL"`
}

// Load processes environment variables and populates the Config struct.
func Load() (*Config, error) {
	// A missing .env is normal; only complain when one exists and is broken.
	if err := godotenv.Load(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			log.Printf("Warning: .env file found but could not be loaded: %v", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
