// Package store implements the repository contracts on PostgreSQL.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/tidemark/internal/contracts"
)

// PriceRepository implements contracts.PriceRepository
// ⭐ SSOT: price persistence lives here only
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository.
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// ListSymbols returns every symbol with at least one price record.
func (r *PriceRepository) ListSymbols(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT symbol
		FROM market.daily_prices
		ORDER BY symbol ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// GetBySymbolAndDateRange retrieves prices for a symbol within the closed
// date range, in ascending date order.
func (r *PriceRepository) GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceRecord, error) {
	query := `
		SELECT symbol, trade_date, open_price, high_price, low_price, close_price, volume
		FROM market.daily_prices
		WHERE symbol = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []contracts.PriceRecord
	for rows.Next() {
		var p contracts.PriceRecord
		if err := rows.Scan(&p.Symbol, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// SaveBatch upserts price records keyed by (symbol, trade_date).
func (r *PriceRepository) SaveBatch(ctx context.Context, prices []contracts.PriceRecord) error {
	if len(prices) == 0 {
		return nil
	}

	query := `
		INSERT INTO market.daily_prices (symbol, trade_date, open_price, high_price, low_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume
	`

	for _, p := range prices {
		if _, err := r.pool.Exec(ctx, query,
			p.Symbol, p.Date, p.Open, p.High, p.Low, p.Close, p.Volume,
		); err != nil {
			return err
		}
	}
	return nil
}
