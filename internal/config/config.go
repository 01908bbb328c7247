// Package config assembles runtime configuration from an optional .env file,
// environment variables and defaults.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"sipbacktester/internal/engine"
)

type Config struct {
	LogLevel string

	// Data sources
	NAVCSVPath  string
	VIXCSVPath  string
	DatabaseURL string
	FundSymbol  string

	// Run parameters
	SIPAmount    float64
	SellAll      bool
	Verbose      bool
	ShowProgress bool

	// Fee schedule
	ExitLoadTiers string // "minDays:bps,minDays:bps"
	SttBps        float64
	TxnCostBps    float64
	TxnCostFlat   float64

	// Reporting
	RiskFreeRate   float64
	PeriodsPerYear int
	CVaRAlpha      float64

	// Regime gating
	VIXThreshold float64
	RiskOffScale float64
}

func Load() *Config {
	// .env is optional; env vars win either way.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("NAV_CSV_PATH", "finance.csv")
	v.SetDefault("VIX_CSV_PATH", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("FUND_SYMBOL", "NIFTY")
	v.SetDefault("SIP_AMOUNT", 1000.0)
	v.SetDefault("SELL_ALL", false)
	v.SetDefault("VERBOSE", false)
	v.SetDefault("SHOW_PROGRESS", true)
	v.SetDefault("EXIT_LOAD_TIERS", "0:100,365:0")
	v.SetDefault("STT_BPS", 10.0)
	v.SetDefault("TXN_COST_BPS", 2.0)
	v.SetDefault("TXN_COST_FLAT", 0.0)
	v.SetDefault("RISK_FREE_RATE", 0.0)
	v.SetDefault("PERIODS_PER_YEAR", 252)
	v.SetDefault("CVAR_ALPHA", 0.95)
	v.SetDefault("VIX_THRESHOLD", 25.0)
	v.SetDefault("RISK_OFF_SCALE", 0.5)

	return &Config{
		LogLevel:       v.GetString("LOG_LEVEL"),
		NAVCSVPath:     v.GetString("NAV_CSV_PATH"),
		VIXCSVPath:     v.GetString("VIX_CSV_PATH"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		FundSymbol:     v.GetString("FUND_SYMBOL"),
		SIPAmount:      v.GetFloat64("SIP_AMOUNT"),
		SellAll:        v.GetBool("SELL_ALL"),
		Verbose:        v.GetBool("VERBOSE"),
		ShowProgress:   v.GetBool("SHOW_PROGRESS"),
		ExitLoadTiers:  v.GetString("EXIT_LOAD_TIERS"),
		SttBps:         v.GetFloat64("STT_BPS"),
		TxnCostBps:     v.GetFloat64("TXN_COST_BPS"),
		TxnCostFlat:    v.GetFloat64("TXN_COST_FLAT"),
		RiskFreeRate:   v.GetFloat64("RISK_FREE_RATE"),
		PeriodsPerYear: v.GetInt("PERIODS_PER_YEAR"),
		CVaRAlpha:      v.GetFloat64("CVAR_ALPHA"),
		VIXThreshold:   v.GetFloat64("VIX_THRESHOLD"),
		RiskOffScale:   v.GetFloat64("RISK_OFF_SCALE"),
	}
}

// CostConfig builds the engine fee schedule from the configured values.
func (c *Config) CostConfig() (engine.CostConfig, error) {
	tiers, err := ParseExitLoadTiers(c.ExitLoadTiers)
	if err != nil {
		return engine.CostConfig{}, err
	}
	return engine.NewCostConfig(
		tiers,
		decimal.NewFromFloat(c.SttBps),
		decimal.NewFromFloat(c.TxnCostBps),
		decimal.NewFromFloat(c.TxnCostFlat),
	), nil
}

// ParseExitLoadTiers parses a "minDays:bps,minDays:bps" schedule string.
func ParseExitLoadTiers(raw string) ([]engine.ExitLoadTier, error) {
	var tiers []engine.ExitLoadTier
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.SplitN(part, ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("exit load tier %q: want minDays:bps", part)
		}
		minDays, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("exit load tier %q: %w", part, err)
		}
		bps, err := decimal.NewFromString(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("exit load tier %q: %w", part, err)
		}
		tiers = append(tiers, engine.ExitLoadTier{MinHoldingDays: minDays, LoadBps: bps})
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("exit load schedule %q has no tiers", raw)
	}
	return tiers, nil
}
