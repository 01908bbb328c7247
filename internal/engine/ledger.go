package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"sipbacktester/types"
)

// ledgerEntry pairs an immutable lot with the quantity of it still open.
// The lot itself is never mutated; only remaining changes.
type ledgerEntry struct {
	lot       types.Lot
	remaining decimal.Decimal
}

// LotLedger is the ordered FIFO queue of open lots for one instrument.
// Entries are kept in acquisition order (buys arrive in timestamp order) and
// consumed from the front. Consumption uses a front index instead of a linked
// structure; fully consumed entries are dropped after each sell.
type LotLedger struct {
	entries []ledgerEntry
}

// Segment is one slice of a sell, taken from a single lot. Quantity may be
// less than the lot's original quantity when the lot straddles the sell.
type Segment struct {
	Lot         types.Lot
	Quantity    decimal.Decimal
	HoldingDays int
}

func NewLotLedger() *LotLedger {
	return &LotLedger{}
}

// Enqueue appends a fully open lot to the back of the queue. Quantity is
// validated by the caller before the lot is created.
func (l *LotLedger) Enqueue(lot types.Lot) {
	l.entries = append(l.entries, ledgerEntry{lot: lot, remaining: lot.Quantity})
}

// TotalRemaining is the instrument's current open position: the sum of
// remaining quantity across all open lots.
func (l *LotLedger) TotalRemaining() decimal.Decimal {
	total := decimal.Zero
	for _, e := range l.entries {
		total = total.Add(e.remaining)
	}
	return total
}

// OpenLots reports how many lots still have remaining quantity.
func (l *LotLedger) OpenLots() int {
	return len(l.entries)
}

// Consume takes quantity units from the front of the queue, oldest lot first,
// and returns one segment per touched lot in consumption order. Holding
// period is measured in whole days between the lot's acquisition and asOf.
//
// The total remaining quantity is checked before any entry is touched, so a
// short sell fails atomically with InsufficientPositionErr and leaves the
// ledger unchanged.
func (l *LotLedger) Consume(quantity decimal.Decimal, asOf time.Time) ([]Segment, error) {
	if l.TotalRemaining().LessThan(quantity) {
		return nil, fmt.Errorf("consume %s units with %s held: %w",
			quantity, l.TotalRemaining(), InsufficientPositionErr)
	}

	var segments []Segment
	left := quantity
	head := 0
	for head < len(l.entries) && left.IsPositive() {
		entry := &l.entries[head]
		use := decimal.Min(entry.remaining, left)
		segments = append(segments, Segment{
			Lot:         entry.lot,
			Quantity:    use,
			HoldingDays: holdingDays(entry.lot.Timestamp, asOf),
		})
		entry.remaining = entry.remaining.Sub(use)
		left = left.Sub(use)
		if entry.remaining.IsZero() {
			head++
		}
	}
	l.entries = l.entries[head:]
	return segments, nil
}

func holdingDays(acquired, asOf time.Time) int {
	return int(asOf.Sub(acquired).Hours() / 24)
}
