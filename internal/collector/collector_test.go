package collector

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tidemark/internal/contracts"
	"github.com/wonny/tidemark/pkg/httputil"
	"github.com/wonny/tidemark/pkg/logger"
)

const newsPage = `
<html><body>
<table class="news_list">
<tr>
	<td class="title"><a href="/n/1">Acme shares surge on record profit</a></td>
	<td class="info">Wire</td>
	<td class="date">2026.03.02 09:15</td>
</tr>
<tr>
	<td class="title"><a href="/n/2">Analysts cut Acme target after weak outlook</a></td>
	<td class="info">Wire</td>
	<td class="date">2026.03.02 11:40</td>
</tr>
<tr>
	<td class="title"><a href="/n/3">Acme to host annual shareholder meeting</a></td>
	<td class="info">Wire</td>
	<td class="date">bogus timestamp</td>
</tr>
<tr><td class="pager">1 2 3</td></tr>
</table>
</body></html>`

func TestParseHeadlines(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	headlines, err := parseHeadlines(newsPage, date)
	require.NoError(t, err)
	require.Len(t, headlines, 3, "pager row has no title and is skipped")

	assert.Equal(t, "Acme shares surge on record profit", headlines[0].Title)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC), headlines[0].Published)

	// Malformed timestamp falls back to the requested date.
	assert.Equal(t, date, headlines[2].Published)
}

func TestParseHeadlines_EmptyPage(t *testing.T) {
	headlines, err := parseHeadlines("<html><body></body></html>", time.Now())
	require.NoError(t, err)
	assert.Empty(t, headlines)
}

func TestScoreHeadline(t *testing.T) {
	tests := []struct {
		title string
		want  int
	}{
		{"Acme shares surge on record profit", 3},
		{"Analysts cut Acme target after weak outlook", -2},
		{"Acme to host annual shareholder meeting", 0},
		{"Profit jumps despite lawsuit", 2 - 1},
		{"SURGE in demand", 1},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreHeadline(tt.title))
		})
	}
}

func TestScore(t *testing.T) {
	assert.Equal(t, 0.0, Score(nil))

	headlines := []Headline{
		{Title: "Shares surge"},
		{Title: "Shares fall on weak demand"},
		{Title: "Quarterly report published"},
		{Title: "Record growth and strong profit"},
	}
	// Per-headline contributions clamp to [-1, 1]: +1, -1, 0, +1.
	assert.InDelta(t, 0.25, Score(headlines), 1e-9)

	bullish := []Headline{{Title: "Record profit, strong growth, shares soar"}}
	assert.Equal(t, 1.0, Score(bullish), "a single headline never exceeds 1")
}

type memorySentimentRepo struct {
	mu      sync.Mutex
	records []contracts.SentimentRecord
}

func (m *memorySentimentRepo) GetBySymbolAndDateRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.SentimentRecord, error) {
	return nil, nil
}

func (m *memorySentimentRepo) SaveBatch(ctx context.Context, records []contracts.SentimentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return nil
}

func TestCollectAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(newsPage))
	}))
	defer server.Close()

	log := logger.NewWithWriter(io.Discard, "error")
	httpClient := httputil.New(log, 5*time.Second, 100).DisableRetry()
	repo := &memorySentimentRepo{}
	c := NewCollector(NewClient(httpClient, server.URL, log), repo, log)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	results, err := c.CollectAll(context.Background(), []string{"AAA", "BBB"}, date, Config{Workers: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, res := range results {
		require.NoError(t, res.Error)
		assert.Equal(t, 3, res.NewsCount)
	}

	require.Len(t, repo.records, 2)
	for _, rec := range repo.records {
		assert.Equal(t, date, rec.Date)
		assert.Equal(t, 3, rec.NewsCount)
		// Page contributions: +1 (surge/record/profit), -1 (cut/weak), 0.
		assert.InDelta(t, 0.0, rec.Score, 1e-9)
	}
}
