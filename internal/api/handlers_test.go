package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tidemark/internal/analysis"
	"github.com/wonny/tidemark/internal/contracts"
	"github.com/wonny/tidemark/internal/indicators"
	"github.com/wonny/tidemark/internal/patterns"
	"github.com/wonny/tidemark/internal/pipeline"
	"github.com/wonny/tidemark/internal/scoring"
	"github.com/wonny/tidemark/pkg/logger"
)

type stubPriceRepo struct {
	prices map[string][]contracts.PriceRecord
}

func (s *stubPriceRepo) ListSymbols(ctx context.Context) ([]string, error) {
	var out []string
	for sym := range s.prices {
		out = append(out, sym)
	}
	return out, nil
}

func (s *stubPriceRepo) GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceRecord, error) {
	return s.prices[symbol], nil
}

func (s *stubPriceRepo) SaveBatch(ctx context.Context, prices []contracts.PriceRecord) error {
	return nil
}

type stubSentimentRepo struct{}

func (s *stubSentimentRepo) GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.SentimentRecord, error) {
	return nil, nil
}

func (s *stubSentimentRepo) SaveBatch(ctx context.Context, records []contracts.SentimentRecord) error {
	return nil
}

type stubAnalysisRepo struct {
	rows []contracts.AnalysisRow
}

func (s *stubAnalysisRepo) GetLatestBySymbol(ctx context.Context, symbol string) (*contracts.AnalysisRow, error) {
	for i := len(s.rows) - 1; i >= 0; i-- {
		if s.rows[i].Symbol == symbol {
			return &s.rows[i], nil
		}
	}
	return nil, nil
}

func (s *stubAnalysisRepo) GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.AnalysisRow, error) {
	var out []contracts.AnalysisRow
	for _, row := range s.rows {
		if row.Symbol == symbol && !row.Date.Before(from) && !row.Date.After(to) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubAnalysisRepo) SaveBatch(ctx context.Context, rows []contracts.AnalysisRow) error {
	s.rows = append(s.rows, rows...)
	return nil
}

func testRouter(analysisRepo *stubAnalysisRepo, priceRepo *stubPriceRepo) http.Handler {
	log := logger.NewWithWriter(io.Discard, "error")
	calc := indicators.NewCalculator(indicators.Config{
		ShortWindow: 20, LongWindow: 50, VolumeWindow: 20, VolumeTrendWindow: 5,
		BollingerK: 2.0, RSIPeriod: 14, MomentumPeriod: 3,
	}, log)
	det := patterns.NewDetector(patterns.Config{Lookback: 4}, log)
	p := pipeline.New(pipeline.Config{Workers: 2}, calc, det, scoring.NewScorer(log), log)
	svc := analysis.New(priceRepo, &stubSentimentRepo{}, analysisRepo, p, nil, nil, log)
	return NewRouter(NewAnalysisHandler(svc, log), NewHub(log), log)
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(&stubAnalysisRepo{}, &stubPriceRepo{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestGetLatest(t *testing.T) {
	repo := &stubAnalysisRepo{rows: []contracts.AnalysisRow{
		{Symbol: "AAA", Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Close: 100},
		{Symbol: "AAA", Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Close: 105},
	}}
	router := testRouter(repo, &stubPriceRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/AAA", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var row contracts.AnalysisRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
	assert.Equal(t, 105.0, row.Close)
}

func TestGetLatest_UnknownSymbol(t *testing.T) {
	router := testRouter(&stubAnalysisRepo{}, &stubPriceRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/NOPE", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetHistory_InvalidDate(t *testing.T) {
	router := testRouter(&stubAnalysisRepo{}, &stubPriceRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/AAA/history?from=03-01-2026", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze(t *testing.T) {
	prices := make([]contracts.PriceRecord, 60)
	for i := range prices {
		c := 100 + float64(i)
		prices[i] = contracts.PriceRecord{
			Symbol: "AAA", Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open: c, High: c, Low: c, Close: c, Volume: 1000,
		}
	}
	repo := &stubAnalysisRepo{}
	router := testRouter(repo, &stubPriceRepo{prices: map[string][]contracts.PriceRecord{"AAA": prices}})

	body := strings.NewReader(`{"from": "2026-01-01", "to": "2026-03-01"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status string `json:"status"`
		Rows   int    `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 60, resp.Rows)
	assert.Len(t, repo.rows, 60)
}
