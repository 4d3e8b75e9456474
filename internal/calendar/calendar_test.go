package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"prodplan/pkg/dateutil"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestCalendar() *Calendar {
	return New(nil, zap.NewNop())
}

// 2026-01-05 is a Monday.
var (
	monday   = day(2026, time.January, 5)
	friday   = day(2026, time.January, 9)
	saturday = day(2026, time.January, 10)
	sunday   = day(2026, time.January, 11)
)

func TestIsWorkday(t *testing.T) {
	ctx := context.Background()

	t.Run("weekdays work by default", func(t *testing.T) {
		snap := newTestCalendar().Snapshot()
		assert.True(t, snap.IsWorkday(monday))
		assert.True(t, snap.IsWorkday(friday))
	})

	t.Run("weekends off by default", func(t *testing.T) {
		snap := newTestCalendar().Snapshot()
		assert.False(t, snap.IsWorkday(saturday))
		assert.False(t, snap.IsWorkday(sunday))
	})

	t.Run("holiday on a weekday", func(t *testing.T) {
		cal := newTestCalendar()
		cal.AddHolidays(ctx, []string{"05/01/2026"})
		assert.False(t, cal.Snapshot().IsWorkday(monday))
	})

	t.Run("explicitly working saturday", func(t *testing.T) {
		cal := newTestCalendar()
		cal.SetWorkingWeekendDates(ctx, []string{"10/01/2026"}, nil)
		snap := cal.Snapshot()
		assert.True(t, snap.IsWorkday(saturday))
		assert.False(t, snap.IsWorkday(sunday))
	})

	t.Run("default weekend policy", func(t *testing.T) {
		cal := newTestCalendar()
		cal.SetWeekendPolicy(ctx, true, false)
		snap := cal.Snapshot()
		assert.True(t, snap.IsWorkday(saturday))
		assert.False(t, snap.IsWorkday(sunday))
	})

	t.Run("holiday beats working saturday", func(t *testing.T) {
		cal := newTestCalendar()
		cal.SetWorkingWeekendDates(ctx, []string{"10/01/2026"}, nil)
		cal.AddHolidays(ctx, []string{"10/01/2026"})
		assert.False(t, cal.Snapshot().IsWorkday(saturday))
	})
}

func TestNextWorkday(t *testing.T) {
	ctx := context.Background()

	t.Run("friday skips the weekend", func(t *testing.T) {
		snap := newTestCalendar().Snapshot()
		next := snap.NextWorkday(friday)
		assert.Equal(t, day(2026, time.January, 12), next)
	})

	t.Run("friday to saturday when saturdays work", func(t *testing.T) {
		cal := newTestCalendar()
		cal.SetWeekendPolicy(ctx, true, false)
		assert.Equal(t, saturday, cal.Snapshot().NextWorkday(friday))
	})

	t.Run("skips a holiday monday", func(t *testing.T) {
		cal := newTestCalendar()
		cal.AddHolidays(ctx, []string{"12/01/2026"})
		assert.Equal(t, day(2026, time.January, 13), cal.Snapshot().NextWorkday(friday))
	})

	t.Run("returns input when the calendar blocks all progress", func(t *testing.T) {
		cal := newTestCalendar()
		blocked := make([]string, 0, 400)
		for d := monday; len(blocked) < 400; d = d.AddDate(0, 0, 1) {
			blocked = append(blocked, dateutil.Format(d))
		}
		cal.AddHolidays(ctx, blocked)
		assert.Equal(t, monday, cal.Snapshot().NextWorkday(monday))
	})
}

func TestCalculateEndDate(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects non-positive hours per day", func(t *testing.T) {
		snap := newTestCalendar().Snapshot()
		_, _, err := snap.CalculateEndDate(monday, 10, 0)
		assert.ErrorIs(t, err, ErrInvalidHoursPerDay)

		_, _, err = snap.CalculateEndDate(monday, 10, -4)
		assert.ErrorIs(t, err, ErrInvalidHoursPerDay)
	})

	t.Run("20h at 8h per day spans three workdays", func(t *testing.T) {
		snap := newTestCalendar().Snapshot()
		end, details, err := snap.CalculateEndDate(monday, 20, 8)
		require.NoError(t, err)
		assert.Equal(t, day(2026, time.January, 7), end)
		assert.Equal(t, 3, details.WorkdaysUsed)
		assert.Equal(t, 3, details.TotalDays)
		assert.Equal(t, "05/01/2026", details.StartDate)
		assert.Equal(t, "07/01/2026", details.EndDate)
	})

	t.Run("partial final day charges a full workday", func(t *testing.T) {
		snap := newTestCalendar().Snapshot()
		end, details, err := snap.CalculateEndDate(monday, 4, 8)
		require.NoError(t, err)
		assert.Equal(t, monday, end)
		assert.Equal(t, 1, details.WorkdaysUsed)
	})

	t.Run("start on a weekend advances to the next workday", func(t *testing.T) {
		snap := newTestCalendar().Snapshot()
		end, details, err := snap.CalculateEndDate(saturday, 8, 8)
		require.NoError(t, err)
		assert.Equal(t, day(2026, time.January, 12), end)
		assert.Equal(t, 1, details.WorkdaysUsed)
		// Span counts calendar days from the requested start, weekend included.
		assert.Equal(t, 3, details.TotalDays)
	})

	t.Run("weekend in the middle stretches the span", func(t *testing.T) {
		snap := newTestCalendar().Snapshot()
		end, details, err := snap.CalculateEndDate(friday, 24, 8)
		require.NoError(t, err)
		assert.Equal(t, day(2026, time.January, 13), end)
		assert.Equal(t, 3, details.WorkdaysUsed)
		assert.Equal(t, 5, details.TotalDays)
	})

	t.Run("holidays push the end date out", func(t *testing.T) {
		cal := newTestCalendar()
		cal.AddHolidays(ctx, []string{"06/01/2026"})
		end, details, err := cal.Snapshot().CalculateEndDate(monday, 16, 8)
		require.NoError(t, err)
		assert.Equal(t, day(2026, time.January, 7), end)
		assert.Equal(t, 2, details.WorkdaysUsed)
	})
}

func TestCountWorkdaysBetween(t *testing.T) {
	ctx := context.Background()

	t.Run("inclusive week", func(t *testing.T) {
		snap := newTestCalendar().Snapshot()
		assert.Equal(t, 5, snap.CountWorkdaysBetween(monday, friday))
	})

	t.Run("weekend tail adds nothing", func(t *testing.T) {
		snap := newTestCalendar().Snapshot()
		assert.Equal(t, 5, snap.CountWorkdaysBetween(monday, sunday))
	})

	t.Run("start after end", func(t *testing.T) {
		snap := newTestCalendar().Snapshot()
		assert.Equal(t, 0, snap.CountWorkdaysBetween(friday, monday))
	})

	t.Run("holiday removed from the count", func(t *testing.T) {
		cal := newTestCalendar()
		cal.AddHolidays(ctx, []string{"07/01/2026"})
		assert.Equal(t, 4, cal.Snapshot().CountWorkdaysBetween(monday, friday))
	})
}

func TestAddRemoveHolidays(t *testing.T) {
	ctx := context.Background()
	cal := newTestCalendar()

	res := cal.AddHolidays(ctx, []string{"06/01/2026", "not-a-date", "32/01/2026"})
	assert.Equal(t, []string{"06/01/2026"}, res.Added)
	assert.Equal(t, []string{"not-a-date", "32/01/2026"}, res.Invalid)
	assert.Equal(t, 1, res.TotalHolidays)

	removed := cal.RemoveHolidays(ctx, []string{"06/01/2026", "07/01/2026"})
	assert.Equal(t, []string{"06/01/2026"}, removed.Removed)
	assert.Equal(t, []string{"07/01/2026"}, removed.NotFound)
	assert.Equal(t, 0, removed.TotalHolidays)
}

func TestHolidaysChronological(t *testing.T) {
	ctx := context.Background()
	cal := newTestCalendar()
	cal.AddHolidays(ctx, []string{"25/12/2026", "01/01/2026", "07/09/2026"})

	assert.Equal(t, []string{"01/01/2026", "07/09/2026", "25/12/2026"}, cal.Holidays())
}

func TestWeekendsInYear(t *testing.T) {
	ctx := context.Background()
	cal := newTestCalendar()
	cal.SetWorkingWeekendDates(ctx, []string{"10/01/2026"}, nil)

	weekends := cal.WeekendsInYear(2026)
	assert.Equal(t, 2026, weekends.Year)
	assert.Len(t, weekends.Saturdays, 52)
	assert.Len(t, weekends.Sundays, 52)

	assert.Equal(t, "03/01/2026", weekends.Saturdays[0].Date)
	assert.False(t, weekends.Saturdays[0].Working)
	assert.Equal(t, "10/01/2026", weekends.Saturdays[1].Date)
	assert.True(t, weekends.Saturdays[1].Working)
}

func TestSummaryAndClear(t *testing.T) {
	ctx := context.Background()
	cal := newTestCalendar()
	cal.AddHolidays(ctx, []string{"01/01/2026"})
	cal.SetWeekendPolicy(ctx, true, false)
	cal.SetWorkingWeekendDates(ctx, nil, []string{"11/01/2026"})

	sum := cal.Summary()
	assert.Equal(t, 1, sum.TotalHolidays)
	assert.True(t, sum.WorkSaturdayByDefault)
	assert.False(t, sum.WorkSundayByDefault)
	assert.Equal(t, 0, sum.WorkingSaturdays)
	assert.Equal(t, 1, sum.WorkingSundays)

	cal.Clear(ctx)
	sum = cal.Summary()
	assert.Equal(t, 0, sum.TotalHolidays)
	assert.False(t, sum.WorkSaturdayByDefault)
	assert.Equal(t, 0, sum.WorkingSundays)
}

type memStore struct {
	cfg   *Config
	saves int
}

func (s *memStore) Load(ctx context.Context) (*Config, error) { return s.cfg, nil }

func (s *memStore) Save(ctx context.Context, cfg *Config) error {
	s.cfg = cfg
	s.saves++
	return nil
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}

	cal := New(store, zap.NewNop())
	cal.AddHolidays(ctx, []string{"01/01/2026", "25/12/2026"})
	cal.SetWeekendPolicy(ctx, false, true)
	assert.Equal(t, 2, store.saves)

	reloaded := New(store, zap.NewNop())
	require.NoError(t, reloaded.Load(ctx))

	assert.Equal(t, []string{"01/01/2026", "25/12/2026"}, reloaded.Holidays())
	assert.True(t, reloaded.Policy().WorkSunday)
	assert.False(t, reloaded.Policy().WorkSaturday)
}

func TestLoadWithoutStoredConfig(t *testing.T) {
	cal := New(&memStore{}, zap.NewNop())
	require.NoError(t, cal.Load(context.Background()))

	snap := cal.Snapshot()
	assert.True(t, snap.IsWorkday(monday))
	assert.False(t, snap.IsWorkday(saturday))
}

func TestSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	cal := newTestCalendar()

	snap := cal.Snapshot()
	cal.AddHolidays(ctx, []string{"05/01/2026"})

	assert.True(t, snap.IsWorkday(monday))
	assert.False(t, cal.Snapshot().IsWorkday(monday))
}
