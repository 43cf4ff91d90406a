package patterns

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tidemark/internal/contracts"
	"github.com/wonny/tidemark/internal/timeseries"
	"github.com/wonny/tidemark/pkg/logger"
)

func testDetector() *Detector {
	return NewDetector(Config{Lookback: 4}, logger.NewWithWriter(io.Discard, "error"))
}

func seriesOf(t *testing.T, closes []float64) *timeseries.PriceSeries {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]contracts.PriceRecord, len(closes))
	for i, c := range closes {
		records[i] = contracts.PriceRecord{
			Symbol: "TEST", Date: base.AddDate(0, 0, i),
			Open: c, High: c, Low: c, Close: c, Volume: 1000,
		}
	}
	s, err := timeseries.NewPriceSeries("TEST", records)
	require.NoError(t, err)
	return s
}

func TestDetect_SingleSpikeIsResistance(t *testing.T) {
	events := testDetector().Detect(seriesOf(t, []float64{100, 100, 100, 150, 100, 100, 100}))

	require.Len(t, events, 1)
	assert.Equal(t, contracts.PatternResistance, events[0].Type)
	assert.Equal(t, 150.0, events[0].ClosePrice)
	require.NotNil(t, events[0].Strength)
	assert.Equal(t, 1.0, *events[0].Strength, "only resistance event in the series")
}

func TestDetect_StrictlyIncreasingHasNoEvents(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	events := testDetector().Detect(seriesOf(t, closes))
	assert.Empty(t, events, "a monotonic series has no local extrema")
}

func TestDetect_FlatSeriesHasNoEvents(t *testing.T) {
	events := testDetector().Detect(seriesOf(t, []float64{100, 100, 100, 100, 100}))
	assert.Empty(t, events, "extrema require strict inequality")
}

func TestDetect_DoubleTop(t *testing.T) {
	// Pivot at index 4 with a qualifying shoulder at index 3.
	closes := []float64{90, 95, 93, 99, 101, 96}
	events := testDetector().Detect(seriesOf(t, closes))

	require.Len(t, events, 3)

	// Index 1 is a plain local maximum: too early for a double top.
	assert.Equal(t, contracts.PatternResistance, events[0].Type)
	require.NotNil(t, events[0].Strength)
	assert.Equal(t, 1.0, *events[0].Strength)

	assert.Equal(t, contracts.PatternSupport, events[1].Type)
	require.NotNil(t, events[1].Strength)
	assert.Equal(t, 1.0, *events[1].Strength)

	// The double top wins over the plain resistance classification.
	dt := events[2]
	assert.Equal(t, contracts.PatternDoubleTop, dt.Type)
	require.NotNil(t, dt.Strength)
	assert.InDelta(t, (101.0-93.0)/93.0, *dt.Strength, 1e-9)
}

func TestDetect_DoubleBottom(t *testing.T) {
	closes := []float64{110, 105, 107, 101, 99, 104}
	events := testDetector().Detect(seriesOf(t, closes))

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, contracts.PatternDoubleBottom, last.Type)
	require.NotNil(t, last.Strength)
	assert.InDelta(t, (107.0-99.0)/107.0, *last.Strength, 1e-9)
}

// Negating the closes turns every double top condition into a double
// bottom at the same position, and flips the strength's sign without
// changing its magnitude. Exercised on the raw helpers because the
// series container forbids negative prices.
func TestDetect_NegatedMirrorSymmetry(t *testing.T) {
	closes := []float64{90, 95, 93, 99, 101, 96, 92, 97, 94, 100, 102, 95}
	mirror := make([]float64, len(closes))
	for i, c := range closes {
		mirror[i] = -c
	}

	d := testDetector()
	var doubles int
	for i := 3; i < len(closes)-1; i++ {
		assert.Equal(t, d.isDoubleTop(closes, i), d.isDoubleBottom(mirror, i), "index %d", i)
		assert.Equal(t, d.isDoubleBottom(closes, i), d.isDoubleTop(mirror, i), "index %d", i)

		if !d.isDoubleTop(closes, i) {
			continue
		}
		doubles++
		top := doubleStrength(closes[i]-closes[i-2], closes[i-2])
		bottom := doubleStrength(mirror[i-2]-mirror[i], mirror[i-2])
		require.NotNil(t, top)
		require.NotNil(t, bottom)
		assert.InDelta(t, math.Abs(*top), math.Abs(*bottom), 1e-9, "index %d", i)
		assert.InDelta(t, *top, -*bottom, 1e-9, "index %d", i)
	}
	require.NotZero(t, doubles, "fixture must exercise at least one double top")
}

func TestDetect_ZeroReferenceCloseHasNilStrength(t *testing.T) {
	closes := []float64{5, 3, 0, 4, 6, 2}
	events := testDetector().Detect(seriesOf(t, closes))

	var dt *contracts.PatternEvent
	for i := range events {
		if events[i].Type == contracts.PatternDoubleTop {
			dt = &events[i]
		}
	}
	require.NotNil(t, dt, "expected a double top at the 6.0 pivot")
	assert.Nil(t, dt.Strength, "zero reference close leaves strength undefined, not zero")
}

func TestDetect_StrengthCountsPerType(t *testing.T) {
	// Alternating extremes: supports and resistances tally independently.
	closes := []float64{100, 110, 100, 111, 100, 112, 101}
	events := testDetector().Detect(seriesOf(t, closes))

	var supports, resistances, doubles int
	for _, e := range events {
		switch e.Type {
		case contracts.PatternSupport:
			supports++
			require.NotNil(t, e.Strength)
		case contracts.PatternResistance:
			resistances++
			require.NotNil(t, e.Strength)
		default:
			doubles++
		}
	}

	for _, e := range events {
		switch e.Type {
		case contracts.PatternSupport:
			assert.Equal(t, float64(supports), *e.Strength)
		case contracts.PatternResistance:
			assert.Equal(t, float64(resistances), *e.Strength)
		}
	}
	assert.Equal(t, len(events), supports+resistances+doubles)
}

func TestDetect_EventsAscendByDate(t *testing.T) {
	closes := []float64{100, 110, 100, 111, 100, 112, 101}
	events := testDetector().Detect(seriesOf(t, closes))

	require.NotEmpty(t, events)
	seen := map[time.Time]bool{}
	for i := 1; i < len(events); i++ {
		assert.True(t, events[i-1].Date.Before(events[i].Date))
	}
	for _, e := range events {
		assert.False(t, seen[e.Date], "at most one event per date")
		seen[e.Date] = true
	}
}
