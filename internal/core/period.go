package core

import "strings"

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

// ParsePeriod accepts "day", "week" or "month" in any case.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", ErrInvalidPeriod
	}
	return p, nil
}

// Valid reports whether p is one of the three supported periods.
func (p Period) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	default:
		return false
	}
}

func (p Period) String() string {
	return string(p)
}

// Contains reports whether d falls within the range, both ends included.
func (r DateRange) Contains(d Date) bool {
	return d.Compare(r.From) >= 0 && d.Compare(r.To) <= 0
}

// Days returns the number of calendar days in the range.
func (r DateRange) Days() int {
	if r.To.Compare(r.From) < 0 {
		return 0
	}
	return int(DateOf(r.To.Time).Sub(DateOf(r.From.Time).Time).Hours()/24) + 1
}

// RangeFor returns the range of the period containing d: the day itself, the
// Sunday-to-Saturday week, or the first-to-last day of the month.
func RangeFor(p Period, d Date) DateRange {
	d = DateOf(d.Time)
	switch p {
	case PeriodDay:
		return DateRange{From: d, To: d}
	case PeriodWeek:
		start := d.AddDays(-int(d.Weekday()))
		return DateRange{From: start, To: start.AddDays(6)}
	default:
		first := NewDate(d.Year(), d.Month(), 1)
		last := Date{Time: first.AddDate(0, 1, -1)}
		return DateRange{From: first, To: last}
	}
}

// Shift moves d by steps periods: one day, seven days or one calendar month
// per step. Month steps normalise overflowing days the way time.AddDate does.
func Shift(p Period, d Date, steps int) Date {
	switch p {
	case PeriodDay:
		return d.AddDays(steps)
	case PeriodWeek:
		return d.AddDays(7 * steps)
	default:
		return Date{Time: d.AddDate(0, steps, 0)}
	}
}
