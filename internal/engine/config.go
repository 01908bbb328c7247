package engine

import (
	"github.com/shopspring/decimal"
)

type PortfolioConfig struct {
	initialCash decimal.Decimal
}

func NewPortfolioConfig(initialCash decimal.Decimal) *PortfolioConfig {
	return &PortfolioConfig{
		initialCash: initialCash,
	}
}

// RunConfig drives the SIP replay loop: how much cash is added each period,
// whether everything is liquidated at the end and whether that final sell
// records a FIFO audit trace.
type RunConfig struct {
	sipAmount        decimal.Decimal
	sellAll          bool
	verboseFinalSell bool
	showProgress     bool
}

func NewRunConfig(sipAmount decimal.Decimal, sellAll, verboseFinalSell, showProgress bool) *RunConfig {
	return &RunConfig{
		sipAmount:        sipAmount,
		sellAll:          sellAll,
		verboseFinalSell: verboseFinalSell,
		showProgress:     showProgress,
	}
}

type ReportingConfig struct {
	riskFreeRate   float64
	periodsPerYear int
	cvarAlpha      float64
}

// NewReportingConfig takes the per-period risk-free rate, the number of
// return periods per year used for annualization, and the CVaR confidence
// level (e.g. 0.95).
func NewReportingConfig(riskFreeRate float64, periodsPerYear int, cvarAlpha float64) *ReportingConfig {
	return &ReportingConfig{
		riskFreeRate:   riskFreeRate,
		periodsPerYear: periodsPerYear,
		cvarAlpha:      cvarAlpha,
	}
}
