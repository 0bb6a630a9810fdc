package compliance

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date (UTC)
// =============================================================================

// Date is a calendar date with day granularity. All stay accounting is done
// in whole days, inclusive of both endpoints, so Date is the only time
// representation the engine uses.
type Date struct {
	Time time.Time
}

// NewDate constructs a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar date in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar date in UTC.
func Today() Date {
	return DateOf(time.Now().UTC())
}

// ParseDate parses an ISO date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date  { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddYears(n int) Date { return Date{Time: d.Time.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string { return d.normalize().Format("2006-01-02") }

// MarshalJSON renders the date as an ISO string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts an ISO date string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// =============================================================================
// INCLUSIVE DAY SPAN - The one shared counting primitive
// =============================================================================

// InclusiveDays returns the number of calendar days from 'from' to 'to',
// counting both endpoints: 2024-01-01 to 2024-01-05 is 5 days. Every
// accounting method counts with this function so rounding semantics are
// identical across methods. Returns 0 when to < from.
func InclusiveDays(from, to Date) int {
	if to.Before(from) {
		return 0
	}
	return int(to.normalize().Sub(from.normalize()).Hours()/24) + 1
}

// =============================================================================
// WINDOW - An accounting period [Start, End], both inclusive
// =============================================================================

// Window is the period a calculation method accounts days within.
type Window struct {
	Start Date
	End   Date
}

// Contains reports whether the date falls inside the window.
func (w Window) Contains(d Date) bool {
	return d.AfterOrEqual(w.Start) && d.BeforeOrEqual(w.End)
}

// Days is the inclusive length of the window.
func (w Window) Days() int { return InclusiveDays(w.Start, w.End) }

func (w Window) String() string {
	return "[" + w.Start.String() + ", " + w.End.String() + "]"
}

// CalendarYearWindow returns [Jan 1, Dec 31] of the reference date's year.
func CalendarYearWindow(ref Date) Window {
	return Window{
		Start: NewDate(ref.Year(), time.January, 1),
		End:   NewDate(ref.Year(), time.December, 31),
	}
}
