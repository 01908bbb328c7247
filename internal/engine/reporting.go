package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"sipbacktester/types"
)

// MetricsEngine turns an equity series into risk/return statistics. Every
// method is a pure function of its input; results are reproducible given the
// same series. Metrics that are mathematically undefined for a degenerate
// series (zero volatility, no losing periods) come back as NaN rather than
// an error, since short backtests hit those cases routinely.
type MetricsEngine struct {
	riskFreeRate   float64
	periodsPerYear int
	cvarAlpha      float64
}

func NewMetricsEngine(config *ReportingConfig) MetricsEngine {
	return MetricsEngine{
		riskFreeRate:   config.riskFreeRate,
		periodsPerYear: config.periodsPerYear,
		cvarAlpha:      config.cvarAlpha,
	}
}

type Report struct {
	// Meta / period info
	StartDate   time.Time
	TotalPeriod time.Duration
	Periods     int
	TotalTrades int

	// Absolute performance
	FinalEquity decimal.Decimal
	CAGR        float64

	// Risk metrics
	AnnualizedVol float64
	SharpeRatio   float64
	SortinoRatio  float64
	CVaR          float64
	MaxDrawdown   float64

	// Costs
	TotalFees decimal.Decimal
}

// Returns derives simple per-period returns r_t = v_t/v_{t-1} - 1 from the
// equity curve after validating its shape.
func (m MetricsEngine) Returns(equity []types.EquityPoint) ([]float64, error) {
	if err := validateSeries(equity); err != nil {
		return nil, err
	}
	one := decimal.NewFromInt(1)
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Value
		if prev.IsZero() {
			return nil, fmt.Errorf("equity value is zero at %s: %w", equity[i-1].Timestamp, DataQualityErr)
		}
		// Ratio in decimal so equal growth rates produce identical returns.
		returns = append(returns, equity[i].Value.Div(prev).Sub(one).InexactFloat64())
	}
	return returns, nil
}

// CAGR is (final/initial)^(periodsPerYear/periods) - 1. NaN when the curve
// starts or ends at or below zero.
func (m MetricsEngine) CAGR(equity []types.EquityPoint) (float64, error) {
	if err := validateSeries(equity); err != nil {
		return 0, err
	}
	initial := equity[0].Value.InexactFloat64()
	final := equity[len(equity)-1].Value.InexactFloat64()
	if initial <= 0 || final <= 0 {
		return math.NaN(), nil
	}
	periods := float64(len(equity) - 1)
	return math.Pow(final/initial, float64(m.periodsPerYear)/periods) - 1.0, nil
}

// Sharpe annualizes mean excess return over its population standard
// deviation. NaN at zero volatility.
func (m MetricsEngine) Sharpe(returns []float64) float64 {
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - m.riskFreeRate
	}
	std := stddev(excess)
	if std == 0 {
		return math.NaN()
	}
	return mean(excess) / std * math.Sqrt(float64(m.periodsPerYear))
}

// Sortino replaces the denominator with downside deviation: the root mean
// square of the returns below the risk-free rate. NaN when no period lost.
func (m MetricsEngine) Sortino(returns []float64) float64 {
	var downsideSq float64
	downside := 0
	for _, r := range returns {
		if r < m.riskFreeRate {
			d := r - m.riskFreeRate
			downsideSq += d * d
			downside++
		}
	}
	if downside == 0 {
		return math.NaN()
	}
	denom := math.Sqrt(downsideSq / float64(downside))
	if denom == 0 {
		return math.NaN()
	}
	return (mean(returns) - m.riskFreeRate) / denom * math.Sqrt(float64(m.periodsPerYear))
}

// CVaR is the mean of the tail at or below the (1-alpha) quantile of the
// return distribution. The quantile interpolates linearly between order
// statistics.
func (m MetricsEngine) CVaR(returns []float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)

	cutoff := quantile(sorted, 1.0-m.cvarAlpha)
	var sum float64
	n := 0
	for _, r := range sorted {
		if r <= cutoff {
			sum += r
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// MaxDrawdown is the most negative fractional decline below the running
// equity peak. A curve that never falls reports zero.
func (m MetricsEngine) MaxDrawdown(equity []types.EquityPoint) (float64, error) {
	if err := validateSeries(equity); err != nil {
		return 0, err
	}
	peak := equity[0].Value.InexactFloat64()
	maxDD := 0.0
	for _, point := range equity {
		v := point.Value.InexactFloat64()
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := v/peak - 1.0
			if dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD, nil
}

// AnnualizedVol scales the population standard deviation of returns by the
// square root of periods per year.
func (m MetricsEngine) AnnualizedVol(returns []float64) float64 {
	return stddev(returns) * math.Sqrt(float64(m.periodsPerYear))
}

// Summarize rolls every metric into one report.
func (m MetricsEngine) Summarize(equity []types.EquityPoint, trades []types.Trade) (*Report, error) {
	returns, err := m.Returns(equity)
	if err != nil {
		return nil, err
	}
	cagr, err := m.CAGR(equity)
	if err != nil {
		return nil, err
	}
	maxDD, err := m.MaxDrawdown(equity)
	if err != nil {
		return nil, err
	}

	totalFees := decimal.Zero
	for _, tr := range trades {
		totalFees = totalFees.Add(tr.ExitLoad).Add(tr.STT).Add(tr.TxnCost)
	}

	return &Report{
		StartDate:     equity[0].Timestamp,
		TotalPeriod:   equity[len(equity)-1].Timestamp.Sub(equity[0].Timestamp),
		Periods:       len(equity),
		TotalTrades:   len(trades),
		FinalEquity:   equity[len(equity)-1].Value,
		CAGR:          cagr,
		AnnualizedVol: m.AnnualizedVol(returns),
		SharpeRatio:   m.Sharpe(returns),
		SortinoRatio:  m.Sortino(returns),
		CVaR:          m.CVaR(returns),
		MaxDrawdown:   maxDD,
		TotalFees:     totalFees,
	}, nil
}

func (r *Report) Print() {
	fmt.Println("===== SIP Backtest Report =====")
	fmt.Printf("Start Date:            %s\n", r.StartDate.Format("2006-01-02"))
	fmt.Printf("Total Period:          %d days\n", r.TotalPeriod/(24*time.Hour))
	fmt.Printf("Periods:               %d\n", r.Periods)
	fmt.Printf("Total Trades:          %d\n", r.TotalTrades)

	fmt.Println("\n-- Absolute Performance --")
	fmt.Printf("Final Equity:          %s\n", r.FinalEquity)
	fmt.Printf("CAGR:                  %.4f\n", r.CAGR)

	fmt.Println("\n-- Risk Metrics --")
	fmt.Printf("Annualized Vol:        %.4f\n", r.AnnualizedVol)
	fmt.Printf("Sharpe Ratio:          %.4f\n", r.SharpeRatio)
	fmt.Printf("Sortino Ratio:         %.4f\n", r.SortinoRatio)
	fmt.Printf("CVaR:                  %.4f\n", r.CVaR)
	fmt.Printf("Max Drawdown:          %.4f\n", r.MaxDrawdown)

	fmt.Println("\n-- Costs --")
	fmt.Printf("Total Fees:            %s\n", r.TotalFees)

	fmt.Println("===============================")
}

func validateSeries(equity []types.EquityPoint) error {
	if len(equity) < 2 {
		return fmt.Errorf("equity series needs at least 2 points, got %d: %w", len(equity), DataQualityErr)
	}
	for i := 1; i < len(equity); i++ {
		if !equity[i].Timestamp.After(equity[i-1].Timestamp) {
			return fmt.Errorf("equity series not strictly increasing at %s: %w",
				equity[i].Timestamp, DataQualityErr)
		}
	}
	return nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the population standard deviation.
func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mu := mean(xs)
	var varianceSum float64
	for _, x := range xs {
		diff := x - mu
		varianceSum += diff * diff
	}
	return math.Sqrt(varianceSum / float64(len(xs)))
}

// quantile interpolates linearly between order statistics of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}
