// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"

	DefaultPort            = 3318
	DefaultPotContribution = 25.0
)

type Config struct {
	Port                   int
	DatabaseURL            string
	DatabaseType           string
	AdminToken             string
	AllowedOrigin          string
	DefaultPotContribution float64
}

// ParseFlags validates flags and fills the rest from the environment.
// A .env file in the working directory is loaded first if it exists;
// variables already set in the process environment win over it.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	// Missing .env is the normal case in production
	_ = godotenv.Load()

	fs := flag.NewFlagSet("squid-demos", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.AllowedOrigin, "origin", "", "Allowed CORS origin")
	fs.Float64Var(&cfg.DefaultPotContribution, "default-pot", -1, "Pot contribution for new weekly sessions")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminToken, "admin-token", "", "Host dashboard shared secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = os.Getenv("ALLOWED_ORIGIN")
	}

	if cfg.DefaultPotContribution < 0 {
		if potStr := os.Getenv("DEFAULT_POT"); potStr != "" {
			pot, err := strconv.ParseFloat(potStr, 64)
			if err != nil || pot < 0 {
				return Config{}, errors.New("invalid DEFAULT_POT env variable")
			}
			cfg.DefaultPotContribution = pot
		} else {
			cfg.DefaultPotContribution = DefaultPotContribution
		}
	}

	// Secrets - MUST be provided
	if cfg.AdminToken == "" {
		cfg.AdminToken = os.Getenv("ADMIN_TOKEN")
	}
	if cfg.AdminToken == "" {
		return Config{}, errors.New("ADMIN_TOKEN required")
	}

	return cfg, nil
}
