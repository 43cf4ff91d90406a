package contracts

import "time"

// PriceRecord is one daily OHLCV bar for a symbol.
// Records for a symbol are unique and totally ordered by date; gaps
// (weekends, halts) are allowed.
type PriceRecord struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// SentimentRecord is one daily aggregated sentiment observation for a symbol.
// Score is bounded to [-1, 1].
type SentimentRecord struct {
	Symbol       string    `json:"symbol"`
	Date         time.Time `json:"date"`
	Score        float64   `json:"sentiment_score"`
	NewsCount    int       `json:"news_count"`
	SocialVolume int64     `json:"social_volume"`
}
