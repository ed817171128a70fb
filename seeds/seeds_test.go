package seeds

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSkewedIDInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	low := 0
	for range 1000 {
		id := skewedID(rng, 30, 1.5)
		assert.GreaterOrEqual(t, id, int64(1))
		assert.LessOrEqual(t, id, int64(30))
		if id <= 15 {
			low++
		}
	}
	assert.Greater(t, low, 500, "ids skew toward the low end")
}

func TestRecentTimeWithinWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for range 500 {
		ts := recentTime(rng, now, 7)
		assert.False(t, ts.After(now))
		assert.False(t, ts.Before(now.AddDate(0, 0, -7)))
	}
}

func TestWeightedChoice(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	counts := map[string]int{}
	for range 1000 {
		counts[weightedChoice(rng, []string{"a", "b"}, []float64{0.9, 0.1})]++
	}
	assert.Greater(t, counts["a"], counts["b"])
	assert.Equal(t, 1000, counts["a"]+counts["b"])
}
