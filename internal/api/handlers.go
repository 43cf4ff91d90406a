package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/tidemark/internal/analysis"
	"github.com/wonny/tidemark/pkg/logger"
)

// AnalysisHandler handles the analysis API endpoints
// ⭐ SSOT: analysis API handlers live in this struct only
type AnalysisHandler struct {
	service *analysis.Service
	logger  *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *analysis.Service, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{service: service, logger: log}
}

// GetLatest returns the most recent analysis row for a symbol
// GET /api/analysis/{symbol}
func (h *AnalysisHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := mux.Vars(r)["symbol"]

	row, err := h.service.Latest(ctx, symbol)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to get latest analysis")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve analysis")
		return
	}
	if row == nil {
		respondError(w, http.StatusNotFound, "No analysis for symbol")
		return
	}

	respondJSON(w, http.StatusOK, row)
}

// GetHistory returns the analysis rows for a symbol within a date range
// GET /api/analysis/{symbol}/history?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *AnalysisHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := mux.Vars(r)["symbol"]

	from, to, err := parseDateRange(r, 30)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.service.History(ctx, symbol, from, to)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to get analysis history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
		"count":  len(rows),
		"rows":   rows,
	})
}

// AnalyzeRequest represents an on-demand analysis run request
type AnalyzeRequest struct {
	From string `json:"from"` // Optional: date range start (YYYY-MM-DD)
	To   string `json:"to"`   // Optional: date range end (YYYY-MM-DD)
}

// Analyze triggers an analysis run over all symbols
// POST /api/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AnalyzeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	to := time.Now().Truncate(24 * time.Hour)
	if req.To != "" {
		parsed, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'to' date (expected YYYY-MM-DD)")
			return
		}
		to = parsed
	}

	// Default covers the longest window plus the output range.
	from := to.AddDate(0, 0, -120)
	if req.From != "" {
		parsed, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'from' date (expected YYYY-MM-DD)")
			return
		}
		from = parsed
	}

	result, err := h.service.Run(ctx, from, to)
	if err != nil {
		h.logger.WithError(err).Error("Analysis run failed")
		respondError(w, http.StatusInternalServerError, "Analysis run failed")
		return
	}

	failures := make([]map[string]string, 0, len(result.Failures))
	for _, f := range result.Failures {
		failures = append(failures, map[string]string{
			"symbol": f.Symbol,
			"error":  f.Err.Error(),
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"rows":        len(result.Rows),
		"failures":    failures,
		"duration_ms": result.Duration.Milliseconds(),
	})
}

// parseDateRange reads from/to query parameters; to defaults to today and
// from to defaultDays before to.
func parseDateRange(r *http.Request, defaultDays int) (from, to time.Time, err error) {
	to = time.Now().Truncate(24 * time.Hour)
	if s := r.URL.Query().Get("to"); s != "" {
		to, err = time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, errInvalidDate("to")
		}
	}

	from = to.AddDate(0, 0, -defaultDays)
	if s := r.URL.Query().Get("from"); s != "" {
		from, err = time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, errInvalidDate("from")
		}
	}
	return from, to, nil
}

type errInvalidDate string

func (e errInvalidDate) Error() string {
	return "Invalid '" + string(e) + "' date (expected YYYY-MM-DD)"
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
