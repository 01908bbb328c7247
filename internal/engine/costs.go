package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

var tenThousand = decimal.NewFromInt(10000)

// ExitLoadTier charges LoadBps on redemptions whose holding period is at
// least MinHoldingDays. The tier with the highest qualifying threshold wins,
// so a schedule of {0: 100bps, 365: 0bps} charges 1% below one year and
// nothing from day 365 onward (boundary inclusive).
type ExitLoadTier struct {
	MinHoldingDays int
	LoadBps        decimal.Decimal
}

// CostConfig is the immutable fee schedule for one scenario. Separate
// scenarios (different tax regimes) construct separate configs; nothing is
// read from ambient state.
type CostConfig struct {
	exitLoadSchedule []ExitLoadTier
	sttBps           decimal.Decimal
	txnCostBps       decimal.Decimal
	txnCostFlat      decimal.Decimal
}

func NewCostConfig(schedule []ExitLoadTier, sttBps, txnCostBps, txnCostFlat decimal.Decimal) CostConfig {
	tiers := append([]ExitLoadTier(nil), schedule...)
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinHoldingDays < tiers[j].MinHoldingDays
	})
	return CostConfig{
		exitLoadSchedule: tiers,
		sttBps:           sttBps,
		txnCostBps:       txnCostBps,
		txnCostFlat:      txnCostFlat,
	}
}

// DefaultCostConfig mirrors a typical Indian equity fund setup: 1% exit load
// under one year, 10bps STT on sale proceeds, 2bps transaction cost.
func DefaultCostConfig() CostConfig {
	return NewCostConfig(
		[]ExitLoadTier{
			{MinHoldingDays: 0, LoadBps: decimal.NewFromInt(100)},
			{MinHoldingDays: 365, LoadBps: decimal.Zero},
		},
		decimal.NewFromInt(10),
		decimal.NewFromInt(2),
		decimal.Zero,
	)
}

// CostModel computes the fee components of a transaction. All methods are
// pure; fees on a sell are computed per consumed lot segment because lots
// bought at different times can fall into different exit-load tiers within
// one sell order.
type CostModel struct {
	config CostConfig
}

func NewCostModel(config CostConfig) CostModel {
	return CostModel{config: config}
}

// ExitLoad applies the rate of the highest tier whose threshold the holding
// period satisfies to quantity x price.
func (m CostModel) ExitLoad(holdingDays int, quantity, price decimal.Decimal) decimal.Decimal {
	rate := decimal.Zero
	for _, tier := range m.config.exitLoadSchedule {
		if holdingDays >= tier.MinHoldingDays {
			rate = tier.LoadBps
		}
	}
	return bpsOf(quantity.Mul(price), rate)
}

// TransactionTax is the flat STT levy on sale proceeds.
func (m CostModel) TransactionTax(proceeds decimal.Decimal) decimal.Decimal {
	return bpsOf(proceeds, m.config.sttBps)
}

// TransactionCost is charged on every transaction, buys and sells alike.
func (m CostModel) TransactionCost(amount decimal.Decimal) decimal.Decimal {
	return bpsOf(amount, m.config.txnCostBps).Add(m.config.txnCostFlat)
}

func bpsOf(amount, bps decimal.Decimal) decimal.Decimal {
	return amount.Mul(bps).Div(tenThousand)
}
