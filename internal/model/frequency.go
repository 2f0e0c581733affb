package model

import (
	"fmt"
	"time"
)

// Frequency is how often an asset is eligible for a new trade.
type Frequency string

const (
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
)

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FreqDaily, FreqWeekly, FreqMonthly:
		return true
	}
	return false
}

// Days returns the trade interval length in days.
func (f Frequency) Days() int {
	switch f {
	case FreqDaily:
		return 1
	case FreqWeekly:
		return 7
	case FreqMonthly:
		return 30
	default:
		return 7
	}
}

// Interval returns the minimum duration between trades.
func (f Frequency) Interval() time.Duration {
	return time.Duration(f.Days()) * 24 * time.Hour
}

func (f Frequency) String() string { return string(f) }

// ParseFrequency converts a config string into a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if !f.Valid() {
		return "", fmt.Errorf("invalid frequency %q (want daily, weekly or monthly)", s)
	}
	return f, nil
}
