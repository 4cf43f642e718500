package tracking

import (
	"fmt"
	"strings"
	"time"
)

type Cadence string

const (
	CadenceWeekly   Cadence = "weekly"
	CadenceBiweekly Cadence = "biweekly"
	CadenceMonthly  Cadence = "monthly"
)

func ParseCadence(value string) (Cadence, error) {
	switch cadence := Cadence(strings.ToLower(strings.TrimSpace(value))); cadence {
	case CadenceWeekly, CadenceBiweekly, CadenceMonthly:
		return cadence, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCadence, value)
	}
}

// Bounds is an inclusive range of calendar dates.
type Bounds struct {
	Start time.Time
	End   time.Time
}

// ComputeBounds returns the billing window containing ref. Weeks start on
// Monday.
func ComputeBounds(ref time.Time, cadence Cadence) (Bounds, error) {
	day := dateOnly(ref)

	switch cadence {
	case CadenceMonthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Bounds{Start: start, End: start.AddDate(0, 1, -1)}, nil
	case CadenceWeekly:
		start := startOfISOWeek(day)
		return Bounds{Start: start, End: start.AddDate(0, 0, 6)}, nil
	case CadenceBiweekly:
		start := startOfISOWeek(day)
		return Bounds{Start: start, End: start.AddDate(0, 0, 13)}, nil
	default:
		return Bounds{}, fmt.Errorf("%w: %q", ErrInvalidCadence, string(cadence))
	}
}

// NextBounds suggests the window following a period that ended on prevEnd.
func NextBounds(prevEnd time.Time, cadence Cadence) (Bounds, error) {
	return ComputeBounds(dateOnly(prevEnd).AddDate(0, 0, 1), cadence)
}

func startOfISOWeek(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func dateOnly(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
