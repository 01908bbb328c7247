package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"sipbacktester/types"
)

const getNAVSeriesSQL = `
SELECT observed_at, nav
FROM navs
WHERE fund_id = $1 AND observed_at >= $2 AND observed_at <= $3
ORDER BY observed_at ASC`

const getVIXSeriesSQL = `
SELECT observed_at, close
FROM vix
WHERE observed_at >= $1 AND observed_at <= $2
ORDER BY observed_at ASC`

type seriesRow struct {
	ObservedAt time.Time
	Value      decimal.Decimal
}

// GetNAVSeries loads the NAV history of one fund inside [start, end].
func (db *Database) GetNAVSeries(fundId int, start, end time.Time, ctx context.Context) ([]types.NAVPoint, error) {
	rows, err := db.conn.Query(ctx, getNAVSeriesSQL, fundId, start, end)
	if err != nil {
		return nil, fmt.Errorf("query navs: %w", err)
	}
	daos, err := pgx.CollectRows(rows, pgx.RowToStructByPos[seriesRow])
	if err != nil {
		return nil, fmt.Errorf("collect navs: %w", err)
	}
	if len(daos) == 0 {
		return nil, ErrNoNAVs
	}
	return convertNAVRows(daos), nil
}

// GetVIXSeries loads volatility index history inside [start, end].
func (db *Database) GetVIXSeries(start, end time.Time, ctx context.Context) ([]types.VIXPoint, error) {
	rows, err := db.conn.Query(ctx, getVIXSeriesSQL, start, end)
	if err != nil {
		return nil, fmt.Errorf("query vix: %w", err)
	}
	daos, err := pgx.CollectRows(rows, pgx.RowToStructByPos[seriesRow])
	if err != nil {
		return nil, fmt.Errorf("collect vix: %w", err)
	}
	if len(daos) == 0 {
		return nil, ErrNoVIX
	}
	return convertVIXRows(daos), nil
}

func convertNAVRows(daos []seriesRow) []types.NAVPoint {
	var points []types.NAVPoint
	for _, dao := range daos {
		points = append(points, types.NAVPoint{
			Timestamp: dao.ObservedAt,
			NAV:       dao.Value,
		})
	}
	return points
}

func convertVIXRows(daos []seriesRow) []types.VIXPoint {
	var points []types.VIXPoint
	for _, dao := range daos {
		points = append(points, types.VIXPoint{
			Timestamp: dao.ObservedAt,
			Value:     dao.Value,
		})
	}
	return points
}
