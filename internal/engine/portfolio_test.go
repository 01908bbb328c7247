package engine

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"sipbacktester/types"
)

func newTestPortfolio() *Portfolio {
	return NewPortfolio(NewPortfolioConfig(decimal.Zero), NewCostModel(DefaultCostConfig()))
}

func TestPortfolio_BuyValidation(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		quantity string
	}{
		{"zero quantity", "10", "0"},
		{"negative quantity", "10", "-5"},
		{"negative price", "-1", "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPortfolio()
			err := p.Buy(onDay(0), decimal.RequireFromString(tt.price), decimal.RequireFromString(tt.quantity))
			if !errors.Is(err, InvalidOrderErr) {
				t.Fatalf("Buy() error = %v, want InvalidOrderErr", err)
			}
			if !p.Cash().IsZero() || !p.Position().IsZero() || len(p.Trades()) != 0 {
				t.Error("failed buy mutated portfolio state")
			}
		})
	}
}

func TestPortfolio_BuyDebitsCashAndOpensLot(t *testing.T) {
	p := newTestPortfolio()
	if err := p.Buy(onDay(0), decimal.RequireFromString("100"), decimal.RequireFromString("10")); err != nil {
		t.Fatalf("Buy() error = %v", err)
	}

	// gross 1000 plus 2bps transaction cost
	if !p.Cash().Equal(decimal.RequireFromString("-1000.2")) {
		t.Errorf("Cash() = %s, want -1000.2", p.Cash())
	}
	if !p.Position().Equal(decimal.RequireFromString("10")) {
		t.Errorf("Position() = %s, want 10", p.Position())
	}
	if len(p.Trades()) != 1 || p.Trades()[0].Side != types.SideTypeBuy {
		t.Fatalf("expected one buy trade, got %+v", p.Trades())
	}
	if !p.Trades()[0].NetCashFlow.Equal(decimal.RequireFromString("-1000.2")) {
		t.Errorf("trade net cash flow = %s, want -1000.2", p.Trades()[0].NetCashFlow)
	}
}

func TestPortfolio_BuyValueInvestsNetOfCosts(t *testing.T) {
	p := newTestPortfolio()
	p.Deposit(decimal.RequireFromString("1000"))
	if err := p.BuyValue(onDay(0), decimal.RequireFromString("10"), decimal.RequireFromString("1000")); err != nil {
		t.Fatalf("BuyValue() error = %v", err)
	}

	// fee 0.2, so 999.8 buys 99.98 units at 10
	if !p.Position().Equal(decimal.RequireFromString("99.98")) {
		t.Errorf("Position() = %s, want 99.98", p.Position())
	}
	if !p.Cash().IsZero() {
		t.Errorf("Cash() = %s, want 0", p.Cash())
	}
}

func TestPortfolio_SellInsufficientIsAtomic(t *testing.T) {
	p := newTestPortfolio()
	if err := p.Buy(onDay(0), decimal.RequireFromString("10"), decimal.RequireFromString("100")); err != nil {
		t.Fatalf("Buy() error = %v", err)
	}
	cashBefore := p.Cash()

	err := p.Sell(onDay(10), decimal.RequireFromString("12"), decimal.RequireFromString("101"), true)
	if !errors.Is(err, InsufficientPositionErr) {
		t.Fatalf("Sell() error = %v, want InsufficientPositionErr", err)
	}
	if !p.Cash().Equal(cashBefore) {
		t.Errorf("Cash() = %s after failed sell, want %s", p.Cash(), cashBefore)
	}
	if !p.Position().Equal(decimal.RequireFromString("100")) {
		t.Errorf("Position() = %s after failed sell, want 100", p.Position())
	}
	if len(p.AuditLog()) != 0 {
		t.Errorf("AuditLog() has %d entries after failed sell, want 0", len(p.AuditLog()))
	}
	if len(p.Trades()) != 1 {
		t.Errorf("Trades() has %d entries after failed sell, want 1", len(p.Trades()))
	}
}

func TestPortfolio_RejectsOutOfOrderTimestamps(t *testing.T) {
	p := newTestPortfolio()
	if err := p.Buy(onDay(10), decimal.RequireFromString("10"), decimal.RequireFromString("100")); err != nil {
		t.Fatalf("Buy() error = %v", err)
	}

	err := p.Buy(onDay(5), decimal.RequireFromString("10"), decimal.RequireFromString("100"))
	if !errors.Is(err, DataQualityErr) {
		t.Fatalf("Buy() error = %v, want DataQualityErr", err)
	}
	err = p.Sell(onDay(5), decimal.RequireFromString("10"), decimal.RequireFromString("50"), false)
	if !errors.Is(err, DataQualityErr) {
		t.Fatalf("Sell() error = %v, want DataQualityErr", err)
	}
	if !p.Position().Equal(decimal.RequireFromString("100")) {
		t.Errorf("Position() = %s after rejected events, want 100", p.Position())
	}
}

// Buy 100 @ 10 on day 0, buy 50 @ 12 on day 30, sell 120 @ 15 on day 400.
// Both consumed segments hold past the 365-day threshold, so the exit load
// is zero; STT and transaction cost still apply per segment.
func TestPortfolio_SellScenarioLongTermFIFO(t *testing.T) {
	p := newTestPortfolio()
	if err := p.Buy(onDay(0), decimal.RequireFromString("10"), decimal.RequireFromString("100")); err != nil {
		t.Fatalf("Buy() error = %v", err)
	}
	if err := p.Buy(onDay(30), decimal.RequireFromString("12"), decimal.RequireFromString("50")); err != nil {
		t.Fatalf("Buy() error = %v", err)
	}

	if err := p.Sell(onDay(400), decimal.RequireFromString("15"), decimal.RequireFromString("120"), true); err != nil {
		t.Fatalf("Sell() error = %v", err)
	}

	audit := p.AuditLog()
	if len(audit) != 2 {
		t.Fatalf("AuditLog() has %d entries, want 2", len(audit))
	}

	// Segment 1: the whole day-0 lot, held 400 days.
	if !audit[0].LotTimestamp.Equal(onDay(0)) || !audit[0].Quantity.Equal(decimal.RequireFromString("100")) {
		t.Errorf("first segment = %+v, want 100 units of day-0 lot", audit[0])
	}
	if audit[0].HoldingDays != 400 {
		t.Errorf("first segment holding days = %d, want 400", audit[0].HoldingDays)
	}
	if !audit[0].ExitLoad.IsZero() {
		t.Errorf("first segment exit load = %s, want 0", audit[0].ExitLoad)
	}
	// gross 1500 - stt 1.5 - txn 0.3 - basis 1000
	if !audit[0].NetGain.Equal(decimal.RequireFromString("498.2")) {
		t.Errorf("first segment net gain = %s, want 498.2", audit[0].NetGain)
	}

	// Segment 2: 20 units of the day-30 lot, held 370 days, still long-term.
	if !audit[1].LotTimestamp.Equal(onDay(30)) || !audit[1].Quantity.Equal(decimal.RequireFromString("20")) {
		t.Errorf("second segment = %+v, want 20 units of day-30 lot", audit[1])
	}
	if audit[1].HoldingDays != 370 {
		t.Errorf("second segment holding days = %d, want 370", audit[1].HoldingDays)
	}
	if !audit[1].ExitLoad.IsZero() {
		t.Errorf("second segment exit load = %s, want 0", audit[1].ExitLoad)
	}
	// gross 300 - stt 0.3 - txn 0.06 - basis 240
	if !audit[1].NetGain.Equal(decimal.RequireFromString("59.64")) {
		t.Errorf("second segment net gain = %s, want 59.64", audit[1].NetGain)
	}

	if !p.RealizedPnL().Equal(decimal.RequireFromString("557.84")) {
		t.Errorf("RealizedPnL() = %s, want 557.84", p.RealizedPnL())
	}
	if !p.Position().Equal(decimal.RequireFromString("30")) {
		t.Errorf("Position() = %s, want 30", p.Position())
	}
	// cash: -1000.2 - 600.12 + (1800 - 1.8 - 0.36)
	if !p.Cash().Equal(decimal.RequireFromString("197.52")) {
		t.Errorf("Cash() = %s, want 197.52", p.Cash())
	}
}

func TestPortfolio_ShortHoldPaysExitLoad(t *testing.T) {
	p := newTestPortfolio()
	if err := p.Buy(onDay(0), decimal.RequireFromString("10"), decimal.RequireFromString("10")); err != nil {
		t.Fatalf("Buy() error = %v", err)
	}
	if err := p.Sell(onDay(100), decimal.RequireFromString("20"), decimal.RequireFromString("10"), true); err != nil {
		t.Fatalf("Sell() error = %v", err)
	}

	audit := p.AuditLog()
	if len(audit) != 1 {
		t.Fatalf("AuditLog() has %d entries, want 1", len(audit))
	}
	// 1% of gross 200
	if !audit[0].ExitLoad.Equal(decimal.RequireFromString("2")) {
		t.Errorf("exit load = %s, want 2", audit[0].ExitLoad)
	}
	// 200 - 2 - 0.2 - 0.04 - 100
	if !p.RealizedPnL().Equal(decimal.RequireFromString("97.76")) {
		t.Errorf("RealizedPnL() = %s, want 97.76", p.RealizedPnL())
	}
}

func TestPortfolio_SilentSellMatchesVerboseAccounting(t *testing.T) {
	run := func(verbose bool) *Portfolio {
		p := newTestPortfolio()
		p.Buy(onDay(0), decimal.RequireFromString("10"), decimal.RequireFromString("100"))
		p.Buy(onDay(30), decimal.RequireFromString("12"), decimal.RequireFromString("50"))
		p.Sell(onDay(200), decimal.RequireFromString("14"), decimal.RequireFromString("130"), verbose)
		return p
	}

	silent := run(false)
	audited := run(true)

	if !silent.Cash().Equal(audited.Cash()) {
		t.Errorf("cash differs: silent %s, audited %s", silent.Cash(), audited.Cash())
	}
	if !silent.RealizedPnL().Equal(audited.RealizedPnL()) {
		t.Errorf("realized pnl differs: silent %s, audited %s", silent.RealizedPnL(), audited.RealizedPnL())
	}
	if len(silent.AuditLog()) != 0 {
		t.Errorf("silent run recorded %d audit entries", len(silent.AuditLog()))
	}
	if len(audited.AuditLog()) != 2 {
		t.Errorf("audited run recorded %d audit entries, want 2", len(audited.AuditLog()))
	}
}

func TestPortfolio_PositionValueIsReadOnly(t *testing.T) {
	p := newTestPortfolio()
	p.Deposit(decimal.RequireFromString("500"))
	if err := p.Buy(onDay(0), decimal.RequireFromString("10"), decimal.RequireFromString("20")); err != nil {
		t.Fatalf("Buy() error = %v", err)
	}
	cash := p.Cash()
	position := p.Position()

	// 20 * 13 + cash
	want := decimal.RequireFromString("260").Add(cash)
	if got := p.PositionValue(decimal.RequireFromString("13")); !got.Equal(want) {
		t.Errorf("PositionValue(13) = %s, want %s", got, want)
	}
	if !p.Cash().Equal(cash) || !p.Position().Equal(position) {
		t.Error("PositionValue mutated portfolio state")
	}
}
