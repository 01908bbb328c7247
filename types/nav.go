package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// NAVPoint is one observation of a fund's net asset value.
type NAVPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	NAV       decimal.Decimal `json:"nav"`
}

// VIXPoint is one observation of a volatility index close.
type VIXPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Value     decimal.Decimal `json:"value"`
}

type Fund struct {
	Id         int
	Symbol     string
	Name       string
	CreatedAt  time.Time
	ModifiedAt time.Time
}
