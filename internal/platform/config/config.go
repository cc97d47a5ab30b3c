package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// ReceivableAccountCode is the code of the AR control account the
	// student sub-ledger nets against.
	ReceivableAccountCode string

	// ReconcileEpsilon is the largest |cached - recomputed| reconciliation
	// treats as agreement. Default zero: exact match required.
	ReconcileEpsilon decimal.Decimal

	// WriteRateLimit is a ulule/limiter formatted rate ("60-M" = 60 per
	// minute) applied to write endpoints per client IP.
	WriteRateLimit string
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("RECEIVABLE_ACCOUNT_CODE", "1100")
	viper.SetDefault("RECONCILE_EPSILON", "0")
	viper.SetDefault("WRITE_RATE_LIMIT", "120-M")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:           viper.GetString("PGSQL_URL"),
		Port:                  viper.GetString("PORT"),
		IsProduction:          viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:         viper.GetBool("ENABLE_DB_CHECK"),
		ReceivableAccountCode: viper.GetString("RECEIVABLE_ACCOUNT_CODE"),
		WriteRateLimit:        viper.GetString("WRITE_RATE_LIMIT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	epsilonStr := viper.GetString("RECONCILE_EPSILON")
	epsilon, err := decimal.NewFromString(epsilonStr)
	if err != nil || epsilon.IsNegative() {
		return nil, fmt.Errorf("invalid RECONCILE_EPSILON %q: must be a non-negative decimal", epsilonStr)
	}
	cfg.ReconcileEpsilon = epsilon

	return cfg, nil
}
