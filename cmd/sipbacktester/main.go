package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sipbacktester/internal/config"
	"sipbacktester/internal/data"
	"sipbacktester/internal/engine"
	"sipbacktester/internal/logging"
	"sipbacktester/internal/repository"
	"sipbacktester/internal/strategy"
	"sipbacktester/types"
)

func main() {
	cfg := config.Load()

	navCSV := flag.String("nav-csv", cfg.NAVCSVPath, "path to price CSV with date + close columns")
	sip := flag.Float64("sip", cfg.SIPAmount, "amount invested each period")
	sellAll := flag.Bool("sell-all", cfg.SellAll, "liquidate all units at the final date")
	verbose := flag.Bool("verbose", cfg.Verbose, "record a FIFO audit trace on the final sell")
	fromDB := flag.Bool("from-db", false, "load the NAV series from postgres instead of CSV")
	tradesOut := flag.String("trades-csv", "", "optional path to write the trade log CSV")
	flag.Parse()

	log := logging.New(cfg.LogLevel)
	defer log.Sync()

	costCfg, err := cfg.CostConfig()
	if err != nil {
		log.Fatalw("bad fee schedule", "error", err)
	}

	series, err := loadSeries(cfg, *navCSV, *fromDB)
	if err != nil {
		log.Fatalw("load NAV series", "error", err)
	}
	log.Infow("loaded NAV series", "points", len(series), "fund", cfg.FundSymbol)

	if cfg.VIXCSVPath != "" {
		logRegimeState(cfg, series, log)
	}

	portfolio := engine.NewPortfolio(
		engine.NewPortfolioConfig(decimal.Zero),
		engine.NewCostModel(costCfg),
	)
	eng := engine.NewEngine(
		portfolio,
		engine.NewRunConfig(decimal.NewFromFloat(*sip), *sellAll, *verbose, cfg.ShowProgress),
		engine.NewReportingConfig(cfg.RiskFreeRate, cfg.PeriodsPerYear, cfg.CVaRAlpha),
		log,
	)

	equity, err := eng.RunSIP(series)
	if err != nil {
		log.Fatalw("backtest failed", "error", err)
	}

	report, err := eng.Report(equity)
	if err != nil {
		log.Fatalw("report failed", "error", err)
	}
	report.Print()

	if auditLog := portfolio.AuditLog(); len(auditLog) > 0 {
		fmt.Println("\nFIFO depletion log from final sale:")
		for _, entry := range auditLog {
			fmt.Printf(" - Lot %s -> sold %s units held %d days; exit_load=%s, stt=%s, txn=%s, net_gain=%s\n",
				entry.LotTimestamp.Format("2006-01-02"),
				entry.Quantity.StringFixed(2),
				entry.HoldingDays,
				entry.ExitLoad.StringFixed(2),
				entry.STT.StringFixed(2),
				entry.TxnCost.StringFixed(2),
				entry.NetGain.StringFixed(2),
			)
		}
	}

	if *tradesOut != "" {
		if err := eng.WriteTradesCSVFile(*tradesOut); err != nil {
			log.Fatalw("write trades csv", "error", err)
		}
		log.Infow("wrote trade log", "path", *tradesOut)
	}
}

func loadSeries(cfg *config.Config, navCSV string, fromDB bool) ([]types.NAVPoint, error) {
	if !fromDB {
		return data.LoadNAVCSV(navCSV)
	}

	db, err := repository.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ctx := context.Background()
	fund, err := db.GetFundBySymbol(cfg.FundSymbol, ctx)
	if err != nil {
		return nil, err
	}
	start := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	return db.GetNAVSeries(fund.Id, start, time.Now(), ctx)
}

// logRegimeState reports what the VIX gate would do to the target weight at
// the end of the series. The gate feeds sizing decisions upstream of the
// accounting engine; the SIP replay itself buys a fixed amount.
func logRegimeState(cfg *config.Config, series []types.NAVPoint, log *zap.SugaredLogger) {
	vixHistory, err := data.LoadVIXCSV(cfg.VIXCSVPath)
	if err != nil {
		log.Warnw("VIX history unavailable", "error", err)
		return
	}
	asOf := series[len(series)-1].Timestamp
	currentVIX, err := data.LatestVIX(vixHistory, asOf)
	if err != nil {
		log.Warnw("no VIX reading for date", "date", asOf, "error", err)
		return
	}
	regime := strategy.NewRegimeConfig(
		decimal.NewFromFloat(cfg.VIXThreshold),
		decimal.NewFromFloat(cfg.RiskOffScale),
	)
	adjusted := regime.AdjustWeights(
		map[string]decimal.Decimal{cfg.FundSymbol: decimal.NewFromInt(1)},
		currentVIX,
	)
	log.Infow("regime gate",
		"vix", currentVIX,
		"threshold", cfg.VIXThreshold,
		"target_weight", adjusted[cfg.FundSymbol],
	)
}
