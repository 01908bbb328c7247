package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// EquityPoint is one sample of total portfolio value (position + cash).
// A backtest run produces a strictly time-ordered series of these.
type EquityPoint struct {
	Timestamp time.Time
	Value     decimal.Decimal
}
