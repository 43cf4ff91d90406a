package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/tidemark/internal/contracts"
)

// AnalysisRepository implements contracts.AnalysisRepository
// ⭐ SSOT: analysis row persistence lives here only
type AnalysisRepository struct {
	pool *pgxpool.Pool
}

// NewAnalysisRepository creates a new analysis repository.
func NewAnalysisRepository(pool *pgxpool.Pool) *AnalysisRepository {
	return &AnalysisRepository{pool: pool}
}

const analysisColumns = `
	symbol, analysis_date, close_price, volume,
	sma_20, sma_50, std_dev_20, upper_band, lower_band, daily_return, rsi, volume_sma,
	volume_pattern, volume_trend, pattern_type, pattern_strength,
	sentiment_score, sentiment_momentum, news_momentum,
	bollinger_signal, trend_signal, volatility_ratio, market_sentiment_score
`

// GetLatestBySymbol returns the most recent analysis row for a symbol, or
// nil when the symbol has none.
func (r *AnalysisRepository) GetLatestBySymbol(ctx context.Context, symbol string) (*contracts.AnalysisRow, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM market.analysis_rows
		WHERE symbol = $1
		ORDER BY analysis_date DESC
		LIMIT 1
	`

	row, err := scanAnalysisRow(r.pool.QueryRow(ctx, query, symbol))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// GetBySymbolAndDateRange retrieves analysis rows for a symbol within the
// closed date range, in ascending date order.
func (r *AnalysisRepository) GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.AnalysisRow, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM market.analysis_rows
		WHERE symbol = $1 AND analysis_date BETWEEN $2 AND $3
		ORDER BY analysis_date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.AnalysisRow
	for rows.Next() {
		row, err := scanAnalysisRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *row)
	}
	return out, rows.Err()
}

// SaveBatch upserts analysis rows keyed by (symbol, analysis_date) in one
// round trip per batch.
func (r *AnalysisRepository) SaveBatch(ctx context.Context, rows []contracts.AnalysisRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
		INSERT INTO market.analysis_rows (` + analysisColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT (symbol, analysis_date) DO UPDATE SET
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume,
			sma_20 = EXCLUDED.sma_20,
			sma_50 = EXCLUDED.sma_50,
			std_dev_20 = EXCLUDED.std_dev_20,
			upper_band = EXCLUDED.upper_band,
			lower_band = EXCLUDED.lower_band,
			daily_return = EXCLUDED.daily_return,
			rsi = EXCLUDED.rsi,
			volume_sma = EXCLUDED.volume_sma,
			volume_pattern = EXCLUDED.volume_pattern,
			volume_trend = EXCLUDED.volume_trend,
			pattern_type = EXCLUDED.pattern_type,
			pattern_strength = EXCLUDED.pattern_strength,
			sentiment_score = EXCLUDED.sentiment_score,
			sentiment_momentum = EXCLUDED.sentiment_momentum,
			news_momentum = EXCLUDED.news_momentum,
			bollinger_signal = EXCLUDED.bollinger_signal,
			trend_signal = EXCLUDED.trend_signal,
			volatility_ratio = EXCLUDED.volatility_ratio,
			market_sentiment_score = EXCLUDED.market_sentiment_score
	`

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(query,
			row.Symbol, row.Date, row.Close, row.Volume,
			row.SMAShort, row.SMALong, row.StdDev, row.UpperBand, row.LowerBand,
			row.DailyReturn, row.RSI, row.VolumeSMA,
			nullableLabel(row.VolumePattern), nullableLabel(row.VolumeTrend),
			nullableLabel(string(row.PatternType)), row.PatternStrength,
			row.SentimentScore, row.SentimentMomentum, row.NewsMomentum,
			nullableLabel(row.BollingerSignal), nullableLabel(row.TrendSignal),
			row.VolatilityRatio, row.MarketSentimentScore,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return results.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysisRow(s rowScanner) (*contracts.AnalysisRow, error) {
	var row contracts.AnalysisRow
	var volumePattern, volumeTrend, patternType, bollingerSignal, trendSignal *string

	err := s.Scan(
		&row.Symbol, &row.Date, &row.Close, &row.Volume,
		&row.SMAShort, &row.SMALong, &row.StdDev, &row.UpperBand, &row.LowerBand,
		&row.DailyReturn, &row.RSI, &row.VolumeSMA,
		&volumePattern, &volumeTrend, &patternType, &row.PatternStrength,
		&row.SentimentScore, &row.SentimentMomentum, &row.NewsMomentum,
		&bollingerSignal, &trendSignal,
		&row.VolatilityRatio, &row.MarketSentimentScore,
	)
	if err != nil {
		return nil, err
	}

	row.VolumePattern = label(volumePattern)
	row.VolumeTrend = label(volumeTrend)
	row.PatternType = contracts.PatternType(label(patternType))
	row.BollingerSignal = label(bollingerSignal)
	row.TrendSignal = label(trendSignal)
	return &row, nil
}

// Undefined labels are NULL in the database, empty strings in memory.
func nullableLabel(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func label(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
