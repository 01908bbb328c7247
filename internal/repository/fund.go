package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sipbacktester/types"
)

const getFundBySymbolSQL = `
SELECT id, symbol, name, created_at, modified_at
FROM funds
WHERE symbol = $1`

// GetFundBySymbol retrieves a types.Fund by its symbol.
func (db *Database) GetFundBySymbol(symbol string, ctx context.Context) (*types.Fund, error) {
	var fund types.Fund
	err := db.conn.QueryRow(ctx, getFundBySymbolSQL, symbol).Scan(
		&fund.Id,
		&fund.Symbol,
		&fund.Name,
		&fund.CreatedAt,
		&fund.ModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("symbol %s %w", symbol, ErrFundNotFound)
		}
		return nil, err
	}
	return &fund, nil
}
