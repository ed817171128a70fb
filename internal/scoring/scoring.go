// Package scoring holds the hand-tuned heuristics shared by the candidate
// providers and the feed composer. Every function is pure: same inputs, same
// output.
package scoring

import (
	"math"
	"time"
)

const (
	personalFreqWeight    = 0.55
	personalRatingWeight  = 0.30
	personalRecencyWeight = 0.15

	// FreqSaturation is the co-occurrence weight at which freq reaches 1.
	FreqSaturation = 10.0
	// MaxRating is the top of the rating scale.
	MaxRating = 5.0

	trendingReviewWeight = 0.7
	trendingStartWeight  = 0.3

	rankScoreWeight   = 0.72
	rankRecencyWeight = 0.28
)

// Saturate maps v onto [0,1], reaching 1 at ceiling.
func Saturate(v, ceiling float64) float64 {
	if ceiling <= 0 || v <= 0 {
		return 0
	}
	return math.Min(v/ceiling, 1)
}

// LinearDecay is 1 at age zero and falls linearly to 0 at horizon.
// Future timestamps count as age zero.
func LinearDecay(age, horizon time.Duration) float64 {
	if horizon <= 0 {
		return 0
	}
	if age < 0 {
		age = 0
	}
	return math.Max(0, 1-float64(age)/float64(horizon))
}

// Personal blends the collaborative-filtering sub-terms:
// 0.55*freq + 0.30*rating + 0.15*recency.
func Personal(weightedFreq, avgRating float64, sinceLastSignal, recencyHorizon time.Duration) float64 {
	freq := Saturate(weightedFreq, FreqSaturation)
	rating := Saturate(avgRating, MaxRating)
	recency := LinearDecay(sinceLastSignal, recencyHorizon)
	return personalFreqWeight*freq + personalRatingWeight*rating + personalRecencyWeight*recency
}

// MinMax scales values into [0,1]. When every value is identical the range
// is treated as 1 so nothing divides by zero.
func MinMax(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

// Trending blends normalized recent reviews and reading starts.
func Trending(normReviews, normStarts float64) float64 {
	return trendingReviewWeight*normReviews + trendingStartWeight*normStarts
}

// RecencyBoost decays linearly from 1 to 0 over two half-lives:
// max(0, 1 - hoursSince/(2*halfLife)).
func RecencyBoost(createdAt, now time.Time, halfLife time.Duration) float64 {
	return LinearDecay(now.Sub(createdAt), 2*halfLife)
}

// Rank is the final blended ordering key of a feed item.
func Rank(score float64, createdAt, now time.Time, halfLife time.Duration) float64 {
	return rankScoreWeight*score + rankRecencyWeight*RecencyBoost(createdAt, now, halfLife)
}

// RankWithoutRecency is used for fallback items, whose recency carries no
// signal.
func RankWithoutRecency(score float64) float64 {
	return rankScoreWeight * score
}

// Round3 rounds to three decimal places for presentation.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
