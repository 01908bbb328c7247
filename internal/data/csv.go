// Package data loads NAV and volatility-index history from CSV files. The
// loaders are tolerant of the usual exchange-download quirks: header casing,
// thousands separators in prices, unsorted rows.
package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sipbacktester/types"
)

var (
	NoRowsErr       = errors.New("no usable rows in CSV")
	NoVIXForDateErr = errors.New("no VIX observation at or before date")
)

var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02-Jan-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// LoadNAVCSV reads a price CSV with a date column and a close column. When
// the headers are not recognisable the first column is taken as the date and
// the last as the price. Rows that fail to parse are skipped; the result is
// sorted by timestamp ascending.
func LoadNAVCSV(path string) ([]types.NAVPoint, error) {
	rows, dateIdx, priceIdx, err := readPriceCSV(path, "close")
	if err != nil {
		return nil, err
	}

	var points []types.NAVPoint
	for _, row := range rows {
		ts, nav, ok := parseRow(row, dateIdx, priceIdx)
		if !ok {
			continue
		}
		points = append(points, types.NAVPoint{Timestamp: ts, NAV: nav})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%s: %w", path, NoRowsErr)
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points, nil
}

// LoadVIXCSV reads volatility index history from a CSV with [Date, Close]
// style columns.
func LoadVIXCSV(path string) ([]types.VIXPoint, error) {
	rows, dateIdx, priceIdx, err := readPriceCSV(path, "close")
	if err != nil {
		return nil, err
	}

	var points []types.VIXPoint
	for _, row := range rows {
		ts, value, ok := parseRow(row, dateIdx, priceIdx)
		if !ok {
			continue
		}
		points = append(points, types.VIXPoint{Timestamp: ts, Value: value})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%s: %w", path, NoRowsErr)
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points, nil
}

// LatestVIX returns the most recent index value at or before asOf. The
// history must be sorted ascending, as the loaders guarantee.
func LatestVIX(history []types.VIXPoint, asOf time.Time) (decimal.Decimal, error) {
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].Timestamp.After(asOf) {
			return history[i].Value, nil
		}
	}
	return decimal.Zero, fmt.Errorf("%s: %w", asOf.Format("2006-01-02"), NoVIXForDateErr)
}

func readPriceCSV(path, priceHeader string) (rows [][]string, dateIdx, priceIdx int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, 0, 0, fmt.Errorf("%s: %w", path, NoRowsErr)
	}

	header := records[0]
	dateIdx = 0
	priceIdx = len(header) - 1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "date":
			dateIdx = i
		case priceHeader:
			priceIdx = i
		}
	}
	return records[1:], dateIdx, priceIdx, nil
}

func parseRow(row []string, dateIdx, priceIdx int) (time.Time, decimal.Decimal, bool) {
	if dateIdx >= len(row) || priceIdx >= len(row) {
		return time.Time{}, decimal.Zero, false
	}
	ts, ok := parseDate(strings.TrimSpace(row[dateIdx]))
	if !ok {
		return time.Time{}, decimal.Zero, false
	}
	raw := strings.ReplaceAll(strings.TrimSpace(row[priceIdx]), ",", "")
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return time.Time{}, decimal.Zero, false
	}
	return ts, value, true
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
