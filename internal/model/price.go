package model

import (
	"sort"
	"time"
)

// PricePoint is one daily price observation. The date component of Time is
// the unique key within a series.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// Day returns the calendar day of the observation, truncated to UTC midnight.
func (p PricePoint) Day() time.Time {
	y, m, d := p.Time.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeSeries sorts points chronologically and deduplicates them per
// calendar day, keeping the last observation for each day.
func NormalizeSeries(points []PricePoint) []PricePoint {
	if len(points) == 0 {
		return nil
	}
	sorted := make([]PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := make([]PricePoint, 0, len(sorted))
	for _, p := range sorted {
		if n := len(out); n > 0 && out[n-1].Day().Equal(p.Day()) {
			out[n-1] = p // last observation wins
			continue
		}
		out = append(out, p)
	}
	return out
}

// ClosePrices extracts the raw price values from a series.
func ClosePrices(points []PricePoint) []float64 {
	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}
	return prices
}

// VolatilitySample is a derived volatility measurement. It is computed fresh
// each decision cycle and never persisted.
type VolatilitySample struct {
	WindowDays int
	Annualized float64 // percent
}
