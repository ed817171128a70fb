package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSaturate(t *testing.T) {
	assert.Equal(t, 0.0, Saturate(0, 10))
	assert.Equal(t, 0.5, Saturate(5, 10))
	assert.Equal(t, 1.0, Saturate(25, 10))
	assert.Equal(t, 0.0, Saturate(3, 0))
}

func TestLinearDecay(t *testing.T) {
	horizon := 90 * 24 * time.Hour

	assert.Equal(t, 1.0, LinearDecay(0, horizon))
	assert.Equal(t, 1.0, LinearDecay(-time.Hour, horizon))
	assert.InDelta(t, 0.5, LinearDecay(45*24*time.Hour, horizon), 1e-9)
	assert.Equal(t, 0.0, LinearDecay(200*24*time.Hour, horizon))
}

func TestPersonal(t *testing.T) {
	horizon := 90 * 24 * time.Hour

	// every sub-term saturated
	assert.InDelta(t, 1.0, Personal(12, 5, 0, horizon), 1e-9)

	// freq 5/10, rating 4/5, recency 0
	got := Personal(5, 4, 100*24*time.Hour, horizon)
	assert.InDelta(t, 0.55*0.5+0.30*0.8, got, 1e-9)
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, MinMax([]float64{2, 4, 6}))
	assert.Empty(t, MinMax(nil))
}

func TestMinMaxIdenticalValues(t *testing.T) {
	// range collapses to 1: every value maps to 0 instead of NaN
	assert.Equal(t, []float64{0, 0, 0}, MinMax([]float64{3, 3, 3}))
}

func TestTrending(t *testing.T) {
	assert.InDelta(t, 1.0, Trending(1, 1), 1e-9)
	assert.InDelta(t, 0.7, Trending(1, 0), 1e-9)
	assert.InDelta(t, 0.3, Trending(0, 1), 1e-9)
}

func TestRecencyBoost(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	halfLife := 36 * time.Hour

	assert.Equal(t, 1.0, RecencyBoost(now, now, halfLife))
	assert.InDelta(t, 0.5, RecencyBoost(now.Add(-36*time.Hour), now, halfLife), 1e-9)
	assert.Equal(t, 0.0, RecencyBoost(now.Add(-72*time.Hour), now, halfLife))
	assert.Equal(t, 0.0, RecencyBoost(now.Add(-500*time.Hour), now, halfLife))
}

func TestRankIsDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createdAt := now.Add(-10 * time.Hour)

	first := Rank(0.64, createdAt, now, 36*time.Hour)
	second := Rank(0.64, createdAt, now, 36*time.Hour)
	assert.Equal(t, first, second)
	assert.InDelta(t, 0.72*0.64+0.28*(1-10.0/72.0), first, 1e-9)
}

func TestRankWithoutRecency(t *testing.T) {
	assert.InDelta(t, 0.72*0.5, RankWithoutRecency(0.5), 1e-9)
	assert.Equal(t, 0.0, RankWithoutRecency(0))
}
