package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"sipbacktester/types"
)

// Portfolio owns one FIFO lot ledger plus cash and position totals for a
// single instrument. Calls must arrive in non-decreasing timestamp order;
// holding-period computation depends on it and violations are rejected.
//
// Cash may go negative when the driver intentionally overspends. That is
// unconstrained margin by choice: the engine records it and never clamps.
type Portfolio struct {
	ledger      *LotLedger
	costs       CostModel
	cash        decimal.Decimal
	position    decimal.Decimal
	realizedPnL decimal.Decimal
	trades      []types.Trade
	auditLog    []types.AuditEntry
	lastEvent   time.Time
}

func NewPortfolio(config *PortfolioConfig, costs CostModel) *Portfolio {
	return &Portfolio{
		ledger: NewLotLedger(),
		costs:  costs,
		cash:   config.initialCash,
	}
}

func (p *Portfolio) Cash() decimal.Decimal        { return p.cash }
func (p *Portfolio) Position() decimal.Decimal    { return p.position }
func (p *Portfolio) RealizedPnL() decimal.Decimal { return p.realizedPnL }
func (p *Portfolio) Trades() []types.Trade        { return p.trades }
func (p *Portfolio) AuditLog() []types.AuditEntry { return p.auditLog }

// Deposit adds cash without a trade, e.g. the periodic SIP top-up.
func (p *Portfolio) Deposit(amount decimal.Decimal) {
	p.cash = p.cash.Add(amount)
}

// PositionValue is the read-only mark-to-market projection used to sample
// the equity curve: position x price + cash. No state is touched.
func (p *Portfolio) PositionValue(price decimal.Decimal) decimal.Decimal {
	return p.position.Mul(price).Add(p.cash)
}

// Buy acquires quantity units at price. The transaction cost is charged on
// top of quantity x price.
func (p *Portfolio) Buy(timestamp time.Time, price, quantity decimal.Decimal) error {
	if err := validateOrder(price, quantity); err != nil {
		return err
	}
	if err := p.checkEventOrder(timestamp); err != nil {
		return err
	}

	gross := quantity.Mul(price)
	txnCost := p.costs.TransactionCost(gross)
	p.cash = p.cash.Sub(gross).Sub(txnCost)
	p.ledger.Enqueue(types.NewLot(timestamp, quantity, price))
	p.position = p.position.Add(quantity)
	p.lastEvent = timestamp

	p.trades = append(p.trades, types.Trade{
		Time:        timestamp,
		Side:        types.SideTypeBuy,
		Quantity:    quantity,
		Price:       price,
		GrossValue:  gross,
		TxnCost:     txnCost,
		NetCashFlow: gross.Add(txnCost).Neg(),
	})
	return nil
}

// BuyValue invests a fixed cash amount instead of a unit count: the
// transaction cost comes out of the amount and the remainder buys units at
// price. This is the SIP-style entry where the contribution, not the unit
// count, is fixed.
func (p *Portfolio) BuyValue(timestamp time.Time, price, cashToSpend decimal.Decimal) error {
	if cashToSpend.Sign() <= 0 || price.Sign() <= 0 {
		return fmt.Errorf("buy %s cash at price %s: %w", cashToSpend, price, InvalidOrderErr)
	}
	if err := p.checkEventOrder(timestamp); err != nil {
		return err
	}

	txnCost := p.costs.TransactionCost(cashToSpend)
	quantity := cashToSpend.Sub(txnCost).Div(price)
	if quantity.Sign() <= 0 {
		return fmt.Errorf("buy %s cash yields no units after costs: %w", cashToSpend, InvalidOrderErr)
	}
	p.cash = p.cash.Sub(cashToSpend)
	p.ledger.Enqueue(types.NewLot(timestamp, quantity, price))
	p.position = p.position.Add(quantity)
	p.lastEvent = timestamp

	p.trades = append(p.trades, types.Trade{
		Time:        timestamp,
		Side:        types.SideTypeBuy,
		Quantity:    quantity,
		Price:       price,
		GrossValue:  cashToSpend,
		TxnCost:     txnCost,
		NetCashFlow: cashToSpend.Neg(),
	})
	return nil
}

// Sell liquidates quantity units at price, consuming lots oldest first. Exit
// load, STT and transaction cost are computed per consumed lot segment since
// segments can straddle an exit-load tier boundary. With verbose set, one
// audit entry per segment is appended in consumption order.
//
// A sell that exceeds the held quantity fails with InsufficientPositionErr
// and leaves ledger, cash and position untouched.
func (p *Portfolio) Sell(timestamp time.Time, price, quantity decimal.Decimal, verbose bool) error {
	if err := validateOrder(price, quantity); err != nil {
		return err
	}
	if err := p.checkEventOrder(timestamp); err != nil {
		return err
	}

	segments, err := p.ledger.Consume(quantity, timestamp)
	if err != nil {
		return err
	}

	grossTotal := decimal.Zero
	exitLoadTotal := decimal.Zero
	sttTotal := decimal.Zero
	txnTotal := decimal.Zero
	gainTotal := decimal.Zero
	for _, seg := range segments {
		gross := seg.Quantity.Mul(price)
		exitLoad := p.costs.ExitLoad(seg.HoldingDays, seg.Quantity, price)
		stt := p.costs.TransactionTax(gross)
		txnCost := p.costs.TransactionCost(gross)
		basis := seg.Quantity.Mul(seg.Lot.UnitCost)
		netGain := gross.Sub(exitLoad).Sub(stt).Sub(txnCost).Sub(basis)

		grossTotal = grossTotal.Add(gross)
		exitLoadTotal = exitLoadTotal.Add(exitLoad)
		sttTotal = sttTotal.Add(stt)
		txnTotal = txnTotal.Add(txnCost)
		gainTotal = gainTotal.Add(netGain)

		if verbose {
			p.auditLog = append(p.auditLog, types.AuditEntry{
				LotTimestamp:  seg.Lot.Timestamp,
				Quantity:      seg.Quantity,
				HoldingDays:   seg.HoldingDays,
				GrossProceeds: gross,
				ExitLoad:      exitLoad,
				STT:           stt,
				TxnCost:       txnCost,
				NetGain:       netGain,
			})
		}
	}

	netProceeds := grossTotal.Sub(exitLoadTotal).Sub(sttTotal).Sub(txnTotal)
	p.cash = p.cash.Add(netProceeds)
	p.position = p.position.Sub(quantity)
	p.realizedPnL = p.realizedPnL.Add(gainTotal)
	p.lastEvent = timestamp

	p.trades = append(p.trades, types.Trade{
		Time:        timestamp,
		Side:        types.SideTypeSell,
		Quantity:    quantity,
		Price:       price,
		GrossValue:  grossTotal,
		ExitLoad:    exitLoadTotal,
		STT:         sttTotal,
		TxnCost:     txnTotal,
		NetCashFlow: netProceeds,
	})
	return nil
}

func validateOrder(price, quantity decimal.Decimal) error {
	if quantity.Sign() <= 0 {
		return fmt.Errorf("quantity %s must be positive: %w", quantity, InvalidOrderErr)
	}
	if price.Sign() < 0 {
		return fmt.Errorf("price %s must be non-negative: %w", price, InvalidOrderErr)
	}
	return nil
}

func (p *Portfolio) checkEventOrder(timestamp time.Time) error {
	if timestamp.Before(p.lastEvent) {
		return fmt.Errorf("event at %s before last event %s: %w",
			timestamp.Format(time.RFC3339), p.lastEvent.Format(time.RFC3339), DataQualityErr)
	}
	return nil
}
