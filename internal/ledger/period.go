package ledger

import (
	"fmt"
	"time"
)

// Period is a half-open UTC time window [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12, got %d", ErrValidation, month)
	}
	return nil
}

// MonthPeriod covers every instant of the given calendar month.
func MonthPeriod(month, year int) (Period, error) {
	if err := ValidateMonth(month); err != nil {
		return Period{}, err
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, 0)}, nil
}

func YearPeriod(year int) Period {
	return YearsPeriod(year, year)
}

// YearsPeriod covers the calendar years from..to inclusive.
func YearsPeriod(from, to int) Period {
	return Period{
		Start: time.Date(from, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(to+1, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Contains reports whether t falls inside the window.
func (p Period) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(p.Start) && t.Before(p.End)
}

// Last is the final representable instant of the window.
func (p Period) Last() time.Time {
	return p.End.Add(-time.Nanosecond)
}

// DaysIn returns the number of days in the given month.
func DaysIn(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
