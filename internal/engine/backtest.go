package engine

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"sipbacktester/types"
)

// Engine replays a NAV series against one portfolio: each period it tops up
// cash by the SIP amount, buys, and samples the equity curve. Optionally the
// whole position is liquidated at the final NAV to realize the FIFO trail.
type Engine struct {
	portfolio       *Portfolio
	runConfig       *RunConfig
	reportingConfig *ReportingConfig
	log             *zap.SugaredLogger
}

func NewEngine(portfolio *Portfolio, runConfig *RunConfig, reportingConfig *ReportingConfig, log *zap.SugaredLogger) *Engine {
	return &Engine{
		portfolio:       portfolio,
		runConfig:       runConfig,
		reportingConfig: reportingConfig,
		log:             log,
	}
}

// RunSIP executes the replay over series and returns the per-period equity
// curve. The series must be non-empty and strictly increasing in time.
func (e *Engine) RunSIP(series []types.NAVPoint) ([]types.EquityPoint, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("empty NAV series: %w", DataQualityErr)
	}
	for i := 1; i < len(series); i++ {
		if !series[i].Timestamp.After(series[i-1].Timestamp) {
			return nil, fmt.Errorf("NAV series not strictly increasing at %s: %w",
				series[i].Timestamp, DataQualityErr)
		}
	}

	var bar *progressbar.ProgressBar
	if e.runConfig.showProgress {
		bar = initProgressBar(len(series))
	}

	equity := make([]types.EquityPoint, 0, len(series))
	for _, point := range series {
		e.portfolio.Deposit(e.runConfig.sipAmount)
		if err := e.portfolio.BuyValue(point.Timestamp, point.NAV, e.runConfig.sipAmount); err != nil {
			return nil, err
		}
		equity = append(equity, types.EquityPoint{
			Timestamp: point.Timestamp,
			Value:     e.portfolio.PositionValue(point.NAV),
		})
		if bar != nil {
			bar.Add(1)
		}
	}

	if e.runConfig.sellAll {
		last := series[len(series)-1]
		held := e.portfolio.Position()
		if held.IsPositive() {
			err := e.portfolio.Sell(last.Timestamp, last.NAV, held, e.runConfig.verboseFinalSell)
			if err != nil {
				return nil, err
			}
			equity[len(equity)-1] = types.EquityPoint{
				Timestamp: last.Timestamp,
				Value:     e.portfolio.PositionValue(last.NAV),
			}
			e.log.Infow("liquidated position",
				"units", held,
				"nav", last.NAV,
				"cash", e.portfolio.Cash(),
				"realized_pnl", e.portfolio.RealizedPnL(),
			)
		}
	}

	e.log.Infow("SIP run complete",
		"periods", len(series),
		"position", e.portfolio.Position(),
		"cash", e.portfolio.Cash(),
	)
	return equity, nil
}

// Report computes the summary metrics for a finished run.
func (e *Engine) Report(equity []types.EquityPoint) (*Report, error) {
	metrics := NewMetricsEngine(e.reportingConfig)
	return metrics.Summarize(equity, e.portfolio.Trades())
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
