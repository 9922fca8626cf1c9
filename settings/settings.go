// Package settings loads library defaults from the environment. A
// .env file in the working directory is honored when present.
package settings

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stratlab/optstrat/logging"
	"github.com/stratlab/optstrat/model"
)

// Environment variable names.
const (
	EnvRiskFreeRate  = "OPTSTRAT_RISK_FREE_RATE"
	EnvDividendYield = "OPTSTRAT_DIVIDEND_YIELD"
	EnvSimSeed       = "OPTSTRAT_SIM_SEED"
	EnvChainSize     = "OPTSTRAT_CHAIN_SIZE"
	EnvDevLogging    = "OPTSTRAT_DEV_LOGGING"
)

// Fallbacks when the environment is silent.
const (
	DefaultRiskFreeRate = 0.05
	DefaultChainSize    = 10
	DefaultSimSeed      = 1
)

// Settings are the resolved library defaults.
type Settings struct {
	RiskFreeRate  decimal.Decimal
	DividendYield model.Positive
	SimSeed       uint64
	ChainSize     int
}

// Load reads .env if present, then the environment, and fills gaps
// with the built-in defaults. A malformed variable falls back to its
// default rather than failing, with a log line.
func Load() Settings {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	s := Settings{
		RiskFreeRate:  decimal.NewFromFloat(DefaultRiskFreeRate),
		DividendYield: model.PZero,
		SimSeed:       DefaultSimSeed,
		ChainSize:     DefaultChainSize,
	}

	if v := os.Getenv(EnvRiskFreeRate); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			s.RiskFreeRate = d
		} else {
			logging.L().Warn("ignoring malformed rate", zap.String("var", EnvRiskFreeRate), zap.String("value", v))
		}
	}
	if v := os.Getenv(EnvDividendYield); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			if p, perr := model.NewPositiveDecimal(d); perr == nil {
				s.DividendYield = p
			} else {
				logging.L().Warn("ignoring negative yield", zap.String("var", EnvDividendYield), zap.String("value", v))
			}
		}
	}
	if v := os.Getenv(EnvSimSeed); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			s.SimSeed = seed
		} else {
			logging.L().Warn("ignoring malformed seed", zap.String("var", EnvSimSeed), zap.String("value", v))
		}
	}
	if v := os.Getenv(EnvChainSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.ChainSize = n
		} else {
			logging.L().Warn("ignoring malformed chain size", zap.String("var", EnvChainSize), zap.String("value", v))
		}
	}
	if os.Getenv(EnvDevLogging) == "1" {
		if err := logging.Development(); err == nil {
			logging.L().Debug("development logging enabled")
		}
	}
	return s
}
