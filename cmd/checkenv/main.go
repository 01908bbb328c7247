// checkenv verifies the runtime environment before a backtest: config loads,
// input CSVs exist and the NAV database (when configured) is reachable.
package main

import (
	"context"
	"os"
	"time"

	"sipbacktester/internal/config"
	"sipbacktester/internal/logging"
	"sipbacktester/internal/repository"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	defer log.Sync()

	ok := true

	if _, err := cfg.CostConfig(); err != nil {
		log.Errorw("fee schedule invalid", "tiers", cfg.ExitLoadTiers, "error", err)
		ok = false
	} else {
		log.Infow("fee schedule parsed", "tiers", cfg.ExitLoadTiers)
	}

	if _, err := os.Stat(cfg.NAVCSVPath); err == nil {
		log.Infow("found NAV price data", "path", cfg.NAVCSVPath)
	} else if cfg.DatabaseURL == "" {
		log.Errorw("NAV CSV missing and no database configured", "path", cfg.NAVCSVPath)
		ok = false
	} else {
		log.Warnw("NAV CSV missing, will rely on database", "path", cfg.NAVCSVPath)
	}

	if cfg.VIXCSVPath != "" {
		if _, err := os.Stat(cfg.VIXCSVPath); err == nil {
			log.Infow("found VIX history", "path", cfg.VIXCSVPath)
		} else {
			log.Warnw("VIX history missing, regime gating disabled", "path", cfg.VIXCSVPath)
		}
	}

	if cfg.DatabaseURL != "" {
		db, err := repository.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			log.Errorw("database unreachable", "error", err)
			ok = false
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := db.Ping(ctx); err != nil {
				log.Errorw("database ping failed", "error", err)
				ok = false
			} else {
				log.Infow("database reachable")
			}
			cancel()
			db.Close()
		}
	}

	if !ok {
		os.Exit(1)
	}
	log.Infow("environment ready")
}
