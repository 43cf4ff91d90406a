package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: repository interfaces are defined here only

// PriceRepository manages daily price data
type PriceRepository interface {
	ListSymbols(ctx context.Context) ([]string, error)
	GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]PriceRecord, error)
	SaveBatch(ctx context.Context, prices []PriceRecord) error
}

// SentimentRepository manages daily sentiment data
type SentimentRepository interface {
	GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]SentimentRecord, error)
	SaveBatch(ctx context.Context, records []SentimentRecord) error
}

// AnalysisRepository manages derived analysis rows
type AnalysisRepository interface {
	GetLatestBySymbol(ctx context.Context, symbol string) (*AnalysisRow, error)
	GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]AnalysisRow, error)
	SaveBatch(ctx context.Context, rows []AnalysisRow) error
}
