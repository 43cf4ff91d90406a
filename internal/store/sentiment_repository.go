package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/tidemark/internal/contracts"
)

// SentimentRepository implements contracts.SentimentRepository
// ⭐ SSOT: sentiment persistence lives here only
type SentimentRepository struct {
	pool *pgxpool.Pool
}

// NewSentimentRepository creates a new sentiment repository.
func NewSentimentRepository(pool *pgxpool.Pool) *SentimentRepository {
	return &SentimentRepository{pool: pool}
}

// GetBySymbolAndDateRange retrieves sentiment records for a symbol within
// the closed date range, in ascending date order.
func (r *SentimentRepository) GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.SentimentRecord, error) {
	query := `
		SELECT symbol, record_date, sentiment_score, news_count, social_volume
		FROM market.daily_sentiment
		WHERE symbol = $1 AND record_date BETWEEN $2 AND $3
		ORDER BY record_date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []contracts.SentimentRecord
	for rows.Next() {
		var s contracts.SentimentRecord
		if err := rows.Scan(&s.Symbol, &s.Date, &s.Score, &s.NewsCount, &s.SocialVolume); err != nil {
			return nil, err
		}
		records = append(records, s)
	}
	return records, rows.Err()
}

// SaveBatch upserts sentiment records keyed by (symbol, record_date).
func (r *SentimentRepository) SaveBatch(ctx context.Context, records []contracts.SentimentRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO market.daily_sentiment (symbol, record_date, sentiment_score, news_count, social_volume)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol, record_date) DO UPDATE SET
			sentiment_score = EXCLUDED.sentiment_score,
			news_count = EXCLUDED.news_count,
			social_volume = EXCLUDED.social_volume
	`

	for _, s := range records {
		if _, err := r.pool.Exec(ctx, query,
			s.Symbol, s.Date, s.Score, s.NewsCount, s.SocialVolume,
		); err != nil {
			return err
		}
	}
	return nil
}
