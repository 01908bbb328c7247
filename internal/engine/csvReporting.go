package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"sipbacktester/types"
)

// WriteTradesCSVFile writes the portfolio trade log to a CSV file at the
// given path.
func (e *Engine) WriteTradesCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trades file: %w", err)
	}
	defer f.Close()

	return writeTradesCSV(f, e.portfolio.Trades())
}

// writeTradesCSV writes trades to any io.Writer as CSV.
// You can pass os.Stdout for debugging, or a file.
func writeTradesCSV(w io.Writer, trades []types.Trade) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"time", // RFC3339
		"side",
		"quantity",
		"price",
		"gross_value",
		"exit_load",
		"stt",
		"txn_cost",
		"net_cash_flow",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tr := range trades {
		record := []string{
			tr.Time.Format(time.RFC3339),
			string(tr.Side),
			tr.Quantity.String(),
			tr.Price.String(),
			tr.GrossValue.String(),
			tr.ExitLoad.String(),
			tr.STT.String(),
			tr.TxnCost.String(),
			tr.NetCashFlow.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
