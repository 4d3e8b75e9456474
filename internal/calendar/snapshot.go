package calendar

import (
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"prodplan/pkg/dateutil"
)

// ErrInvalidHoursPerDay rejects calculations against a machine with
// non-positive daily capacity. This is a configuration problem and aborts the
// whole calculation, unlike per-order lookup misses.
var ErrInvalidHoursPerDay = errors.New("hours per day must be greater than zero")

// nextWorkdayBound caps the forward search for a workday. Hitting it means the
// calendar policy makes forward progress impossible.
const nextWorkdayBound = 365

// Snapshot is an immutable view of the calendar taken at the start of a
// scheduling pass. All date math runs against a snapshot so that concurrent
// calendar mutations never tear a pass.
type Snapshot struct {
	holidays         map[string]struct{}
	workingSaturdays map[string]struct{}
	workingSundays   map[string]struct{}
	workSaturday     bool
	workSunday       bool
	logger           *zap.Logger
}

// IsWorkday reports whether date has production capacity. Holidays always
// lose; weekend days work if the date is explicitly flagged or the default for
// that weekday is on. There is no per-date mechanism to un-work a
// default-working weekend day.
func (s *Snapshot) IsWorkday(date time.Time) bool {
	key := dateutil.Format(date)

	if _, ok := s.holidays[key]; ok {
		return false
	}

	switch date.Weekday() {
	case time.Saturday:
		if _, ok := s.workingSaturdays[key]; ok {
			return true
		}
		return s.workSaturday
	case time.Sunday:
		if _, ok := s.workingSundays[key]; ok {
			return true
		}
		return s.workSunday
	}

	return true
}

// NextWorkday returns the first workday strictly after date. If none exists
// within a year it returns date unchanged and logs the misconfiguration.
func (s *Snapshot) NextWorkday(date time.Time) time.Time {
	next := date.AddDate(0, 0, 1)
	for i := 0; i < nextWorkdayBound; i++ {
		if s.IsWorkday(next) {
			return next
		}
		next = next.AddDate(0, 0, 1)
	}

	s.logger.Warn("no workday found within a year, calendar policy blocks all progress",
		zap.String("from", dateutil.Format(date)),
	)
	return date
}

// EndDateDetails describes one CalculateEndDate run.
type EndDateDetails struct {
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	HoursNeeded  float64 `json:"hours_needed"`
	HoursPerDay  float64 `json:"hours_per_day"`
	WorkdaysUsed int     `json:"workdays_used"`
	TotalDays    int     `json:"total_days"`
}

// CalculateEndDate walks workdays from start consuming hoursPerDay of the
// requirement per day. The day that consumes the final remainder counts as a
// full workday used, even a partial one: sub-day granularity is deliberately
// not modeled, so a short trailing run still occupies its whole day for
// sequencing purposes.
func (s *Snapshot) CalculateEndDate(start time.Time, hoursNeeded, hoursPerDay float64) (time.Time, EndDateDetails, error) {
	if hoursPerDay <= 0 {
		return time.Time{}, EndDateDetails{}, ErrInvalidHoursPerDay
	}

	origin := dateutil.Truncate(start)
	current := origin
	remaining := hoursNeeded
	daysUsed := 0

	if !s.IsWorkday(current) {
		current = s.NextWorkday(current)
	}

	for remaining > 0 {
		if s.IsWorkday(current) {
			if remaining >= hoursPerDay {
				remaining -= hoursPerDay
				daysUsed++
				if remaining > 0 {
					next := s.NextWorkday(current)
					if next.Equal(current) {
						// Exhausted calendar, no forward progress possible.
						break
					}
					current = next
				}
			} else {
				// Partial final day still charges a full workday.
				daysUsed++
				remaining = 0
			}
		} else {
			next := s.NextWorkday(current)
			if next.Equal(current) {
				break
			}
			current = next
		}
	}

	details := EndDateDetails{
		StartDate:    dateutil.Format(origin),
		EndDate:      dateutil.Format(current),
		HoursNeeded:  round2(hoursNeeded),
		HoursPerDay:  hoursPerDay,
		WorkdaysUsed: daysUsed,
		TotalDays:    dateutil.DaysBetween(origin, current) + 1,
	}

	return current, details, nil
}

// CountWorkdaysBetween counts workdays in [start, end] inclusive.
func (s *Snapshot) CountWorkdaysBetween(start, end time.Time) int {
	start = dateutil.Truncate(start)
	end = dateutil.Truncate(end)

	if start.After(end) {
		return 0
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if s.IsWorkday(d) {
			count++
		}
	}
	return count
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
