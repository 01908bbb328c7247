package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot is one purchase event. It is never mutated after creation; the ledger
// tracks how much of it is still open so the original purchase stays on
// record for auditing.
type Lot struct {
	Timestamp time.Time
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

func NewLot(timestamp time.Time, quantity, unitCost decimal.Decimal) Lot {
	return Lot{
		Timestamp: timestamp,
		Quantity:  quantity,
		UnitCost:  unitCost,
	}
}
