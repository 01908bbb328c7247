package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"
)

// Trade is one completed buy or sell as recorded in the portfolio trade log.
// NetCashFlow is negative for buys and positive for sells.
type Trade struct {
	Time        time.Time
	Side        Side
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	GrossValue  decimal.Decimal
	ExitLoad    decimal.Decimal
	STT         decimal.Decimal
	TxnCost     decimal.Decimal
	NetCashFlow decimal.Decimal
}

// AuditEntry records the consumption of one lot segment during a sell.
// Entries appear in the exact order the ledger was depleted, oldest lot
// first, so the log is a faithful trace of FIFO consumption.
type AuditEntry struct {
	LotTimestamp  time.Time
	Quantity      decimal.Decimal
	HoldingDays   int
	GrossProceeds decimal.Decimal
	ExitLoad      decimal.Decimal
	STT           decimal.Decimal
	TxnCost       decimal.Decimal
	NetGain       decimal.Decimal
}
