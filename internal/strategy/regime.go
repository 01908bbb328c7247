// Package strategy holds the regime-gating logic that scales target weights
// down when the volatility index breaches a threshold. It sits upstream of
// the accounting engine: it decides how much to buy or sell, never how the
// FIFO ledger accounts for it.
package strategy

import (
	"github.com/shopspring/decimal"
)

type RegimeConfig struct {
	vixThreshold decimal.Decimal
	riskOffScale decimal.Decimal
}

func NewRegimeConfig(vixThreshold, riskOffScale decimal.Decimal) RegimeConfig {
	return RegimeConfig{
		vixThreshold: vixThreshold,
		riskOffScale: riskOffScale,
	}
}

// DefaultRegimeConfig halves exposure when the index closes above 25.
func DefaultRegimeConfig() RegimeConfig {
	return NewRegimeConfig(decimal.NewFromInt(25), decimal.NewFromFloat(0.5))
}

// AdjustWeights scales every target weight by the risk-off factor when the
// current index value breaches the threshold, then renormalizes. Below the
// threshold the targets pass through untouched.
func (c RegimeConfig) AdjustWeights(targets map[string]decimal.Decimal, currentVIX decimal.Decimal) map[string]decimal.Decimal {
	if !currentVIX.GreaterThan(c.vixThreshold) {
		return targets
	}
	scaled := make(map[string]decimal.Decimal, len(targets))
	for sym, w := range targets {
		scaled[sym] = w.Mul(c.riskOffScale)
	}
	return NormalizeWeights(scaled, decimal.Zero, decimal.NewFromInt(1))
}

// NormalizeWeights clamps each weight into [minW, maxW] and rescales so the
// weights sum to one. An all-zero input comes back unchanged.
func NormalizeWeights(weights map[string]decimal.Decimal, minW, maxW decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(weights))
	total := decimal.Zero
	for sym, w := range weights {
		if w.LessThan(minW) {
			w = minW
		}
		out[sym] = w
		total = total.Add(w)
	}
	if total.IsPositive() {
		for sym, w := range out {
			out[sym] = w.Div(total)
		}
	}

	clamped := false
	total = decimal.Zero
	for sym, w := range out {
		if w.GreaterThan(maxW) {
			w = maxW
			clamped = true
		}
		out[sym] = w
		total = total.Add(w)
	}
	if clamped && total.IsPositive() {
		for sym, w := range out {
			out[sym] = w.Div(total)
		}
	}
	return out
}
