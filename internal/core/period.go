package core

import (
	"errors"
	"time"
)

const (
	PeriodToday  Period = "today"
	PeriodMonth  Period = "month"
	PeriodAll    Period = "all"
	PeriodCustom Period = "custom"
)

type (
	// Period is a named date-range selector used to filter transactions
	// before aggregation.
	Period string

	// DateRange is an inclusive [Start, End] day interval.
	DateRange struct {
		Start Date
		End   Date
	}
)

var (
	ErrInvalidPeriod    = errors.New("period must be one of 'today', 'month', 'all' or 'custom'")
	ErrMissingCustomDay = errors.New("a date is required for the 'custom' period")
)

func (p Period) Valid() bool {
	switch p {
	case PeriodToday, PeriodMonth, PeriodAll, PeriodCustom:
		return true
	}
	return false
}

// Contains reports whether d falls inside the range, boundaries included.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Resolve maps a period token to a concrete inclusive range relative to now.
// A nil range means no filtering (the "all" period). The custom day is only
// consulted for PeriodCustom.
func (p Period) Resolve(now time.Time, custom Date) (*DateRange, error) {
	switch p {
	case PeriodToday:
		day := DateOf(now)
		return &DateRange{Start: day, End: day}, nil
	case PeriodMonth:
		first := NewDate(now.Year(), int(now.Month()), 1)
		last := Date{Time: first.AddDate(0, 1, -1)}
		return &DateRange{Start: first, End: last}, nil
	case PeriodAll:
		return nil, nil
	case PeriodCustom:
		if custom.IsZero() {
			return nil, ErrMissingCustomDay
		}
		return &DateRange{Start: custom, End: custom}, nil
	default:
		return nil, ErrInvalidPeriod
	}
}
