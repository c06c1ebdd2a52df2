// Package analytics holds the closed-form sales heuristics behind the
// dashboard: daily trends, a naive forecast, transaction anomaly scoring
// and similar-order predictions. The functions are pure; callers load the
// data and convert money to float64 before calling in.
package analytics

import (
	"math"
	"sort"
	"time"
)

// Confidence is a coarse confidence label.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Direction is the direction of a sales series.
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
)

const dayLayout = "2006-01-02"

// Stats summarises a series of values. StdDev is the population standard deviation.
type Stats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Describe computes Stats for values. An empty series yields zeros.
func Describe(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	st := Stats{Min: values[0], Max: values[0]}
	sum := 0.0
	for _, v := range values {
		sum += v
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}
	st.Mean = sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - st.Mean) * (v - st.Mean)
	}
	st.StdDev = math.Sqrt(variance / float64(len(values)))
	return st
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func dayOf(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// round2 rounds to cents for presentation.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
