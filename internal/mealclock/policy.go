package mealclock

import (
	"fmt"
	"time"
)

// Meal identifies which meal a submission or report refers to.
type Meal string

const (
	Lunch  Meal = "lunch"
	Dinner Meal = "dinner"
)

// DateLayout is the wire format for attendance dates.
const DateLayout = "2006-01-02"

// TimeOfDay is a wall-clock time within a day, zone-agnostic.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return t, nil
}

// Clock12 renders the time in 12-hour form for user-facing messages, e.g. "4:30 PM".
func (t TimeOfDay) Clock12() string {
	ref := time.Date(2000, 1, 1, t.Hour, t.Minute, 0, 0, time.UTC)
	return ref.Format("3:04 PM")
}

// minutes since midnight, for ordering comparisons.
func (t TimeOfDay) minutes() int { return t.Hour*60 + t.Minute }

func instantMinutes(at time.Time) int { return at.Hour()*60 + at.Minute() }

// Policy holds the cutoff and report-visibility times. All call sites take the
// times from here rather than from package-level constants so deployments and
// tests can vary them.
type Policy struct {
	LunchCutoff   TimeOfDay
	DinnerCutoff  TimeOfDay
	ReportVisible TimeOfDay
}

// DefaultPolicy matches the institute's standing rules: lunch closes 9:00 AM,
// dinner 4:30 PM, reports open from 7:00 AM.
func DefaultPolicy() Policy {
	return Policy{
		LunchCutoff:   TimeOfDay{Hour: 9},
		DinnerCutoff:  TimeOfDay{Hour: 16, Minute: 30},
		ReportVisible: TimeOfDay{Hour: 7},
	}
}

// PolicyFromStrings builds a Policy from "HH:MM" config values.
func PolicyFromStrings(lunch, dinner, visible string) (Policy, error) {
	var p Policy
	var err error
	if p.LunchCutoff, err = ParseTimeOfDay(lunch); err != nil {
		return Policy{}, err
	}
	if p.DinnerCutoff, err = ParseTimeOfDay(dinner); err != nil {
		return Policy{}, err
	}
	if p.ReportVisible, err = ParseTimeOfDay(visible); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Cutoff returns the submission cutoff for a meal.
func (p Policy) Cutoff(meal Meal) TimeOfDay {
	if meal == Dinner {
		return p.DinnerCutoff
	}
	return p.LunchCutoff
}

// Rejection is a refused submission or report request. It is a normal
// negative-path result, not a server fault; handlers map it to 403.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

// ResolveTargetDate returns the calendar date a new submission at the given
// instant applies to. Past the meal's cutoff the submission rolls forward to
// the next day: someone answering at 10 AM is declaring tomorrow's lunch, not
// amending today's.
func (p Policy) ResolveTargetDate(meal Meal, at time.Time) string {
	day := at
	if instantMinutes(at) >= p.Cutoff(meal).minutes() {
		day = at.AddDate(0, 0, 1)
	}
	return day.Format(DateLayout)
}

// CanSubmit decides whether a submission for targetDate is still open at the
// given instant. Future dates are always open; today's date is open strictly
// before the cutoff; past dates are never accepted.
func (p Policy) CanSubmit(meal Meal, at time.Time, targetDate string) error {
	target, err := time.ParseInLocation(DateLayout, targetDate, at.Location())
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", targetDate, err)
	}
	today := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())

	switch {
	case target.After(today):
		return nil
	case target.Before(today):
		return &Rejection{Reason: fmt.Sprintf("cannot submit for past date %s", targetDate)}
	}

	cutoff := p.Cutoff(meal)
	if instantMinutes(at) < cutoff.minutes() {
		return nil
	}
	return &Rejection{Reason: fmt.Sprintf("%s submissions are closed for today, cutoff was %s", meal, cutoff.Clock12())}
}

// ReportVisibleAt reports whether aggregate reports may be served at the given
// instant. Reports for the day open at a fixed hour regardless of meal.
func (p Policy) ReportVisibleAt(at time.Time) bool {
	return instantMinutes(at) >= p.ReportVisible.minutes()
}
