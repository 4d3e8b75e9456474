// Package calendar is the business-day engine: it decides which dates carry
// production capacity and how many of them a given amount of work consumes.
package calendar

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"prodplan/pkg/dateutil"
)

// Config is the flat persisted form of the calendar state.
type Config struct {
	Holidays              []string `json:"holidays"`
	WorkingSaturdays      []string `json:"working_saturdays"`
	WorkingSundays        []string `json:"working_sundays"`
	WorkSaturdayByDefault bool     `json:"work_saturday_by_default"`
	WorkSundayByDefault   bool     `json:"work_sunday_by_default"`
}

// Store persists the calendar configuration as one document.
type Store interface {
	Load(ctx context.Context) (*Config, error)
	Save(ctx context.Context, cfg *Config) error
}

// Calendar owns the mutable calendar state. Mutations persist the whole
// document through the store; reads used by scheduling passes go through
// Snapshot so a pass sees one consistent state throughout.
type Calendar struct {
	mu     sync.RWMutex
	store  Store
	logger *zap.Logger

	holidays         map[string]struct{}
	workingSaturdays map[string]struct{}
	workingSundays   map[string]struct{}
	workSaturday     bool
	workSunday       bool
}

func New(store Store, logger *zap.Logger) *Calendar {
	return &Calendar{
		store:            store,
		logger:           logger,
		holidays:         map[string]struct{}{},
		workingSaturdays: map[string]struct{}{},
		workingSundays:   map[string]struct{}{},
	}
}

// Load pulls the persisted configuration, if any. Missing configuration is not
// an error: the calendar starts with weekends off and no holidays.
func (c *Calendar) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	cfg, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if cfg == nil {
		c.logger.Info("no calendar configuration found, using defaults")
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.holidays = toSet(cfg.Holidays)
	c.workingSaturdays = toSet(cfg.WorkingSaturdays)
	c.workingSundays = toSet(cfg.WorkingSundays)
	c.workSaturday = cfg.WorkSaturdayByDefault
	c.workSunday = cfg.WorkSundayByDefault

	c.logger.Info("calendar configuration loaded",
		zap.Int("holidays", len(c.holidays)),
		zap.Bool("work_saturday", c.workSaturday),
		zap.Bool("work_sunday", c.workSunday),
	)
	return nil
}

// Snapshot returns an immutable copy for one scheduling pass.
func (c *Calendar) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return &Snapshot{
		holidays:         copySet(c.holidays),
		workingSaturdays: copySet(c.workingSaturdays),
		workingSundays:   copySet(c.workingSundays),
		workSaturday:     c.workSaturday,
		workSunday:       c.workSunday,
		logger:           c.logger,
	}
}

type AddHolidaysResult struct {
	Added         []string `json:"added"`
	Invalid       []string `json:"invalid"`
	TotalHolidays int      `json:"total_holidays"`
}

// AddHolidays registers holiday dates given as DD/MM/YYYY strings. Dates that
// fail to parse are reported back, not fatal.
func (c *Calendar) AddHolidays(ctx context.Context, dates []string) AddHolidaysResult {
	res := AddHolidaysResult{Added: []string{}, Invalid: []string{}}

	c.mu.Lock()
	for _, d := range dates {
		if _, err := time.Parse(dateutil.LayoutBR, d); err != nil {
			res.Invalid = append(res.Invalid, d)
			continue
		}
		c.holidays[d] = struct{}{}
		res.Added = append(res.Added, d)
	}
	res.TotalHolidays = len(c.holidays)
	c.mu.Unlock()

	if len(res.Added) > 0 {
		c.persist(ctx)
	}
	return res
}

type RemoveHolidaysResult struct {
	Removed       []string `json:"removed"`
	NotFound      []string `json:"not_found"`
	TotalHolidays int      `json:"total_holidays"`
}

func (c *Calendar) RemoveHolidays(ctx context.Context, dates []string) RemoveHolidaysResult {
	res := RemoveHolidaysResult{Removed: []string{}, NotFound: []string{}}

	c.mu.Lock()
	for _, d := range dates {
		if _, ok := c.holidays[d]; ok {
			delete(c.holidays, d)
			res.Removed = append(res.Removed, d)
		} else {
			res.NotFound = append(res.NotFound, d)
		}
	}
	res.TotalHolidays = len(c.holidays)
	c.mu.Unlock()

	if len(res.Removed) > 0 {
		c.persist(ctx)
	}
	return res
}

// Holidays returns the registered holidays in chronological order.
func (c *Calendar) Holidays() []string {
	c.mu.RLock()
	out := make([]string, 0, len(c.holidays))
	for d := range c.holidays {
		out = append(out, d)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, errA := time.Parse(dateutil.LayoutBR, out[i])
		b, errB := time.Parse(dateutil.LayoutBR, out[j])
		if errA != nil || errB != nil {
			return out[i] < out[j]
		}
		return a.Before(b)
	})
	return out
}

type WeekendPolicy struct {
	WorkSaturday bool `json:"work_saturday"`
	WorkSunday   bool `json:"work_sunday"`
}

// SetWeekendPolicy sets the default working flags for Saturdays and Sundays.
func (c *Calendar) SetWeekendPolicy(ctx context.Context, workSaturday, workSunday bool) {
	c.mu.Lock()
	c.workSaturday = workSaturday
	c.workSunday = workSunday
	c.mu.Unlock()

	c.persist(ctx)
}

func (c *Calendar) Policy() WeekendPolicy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return WeekendPolicy{WorkSaturday: c.workSaturday, WorkSunday: c.workSunday}
}

// SetWorkingWeekendDates replaces the explicit working-weekend date sets.
// Entries can only switch a default-off day on; there is no per-date exception
// to turn a default-working weekend day off.
func (c *Calendar) SetWorkingWeekendDates(ctx context.Context, saturdays, sundays []string) {
	c.mu.Lock()
	c.workingSaturdays = toSet(saturdays)
	c.workingSundays = toSet(sundays)
	c.mu.Unlock()

	c.persist(ctx)
}

type WeekendDay struct {
	Date    string `json:"date"`
	Working bool   `json:"working"`
}

type YearWeekends struct {
	Year      int          `json:"year"`
	Saturdays []WeekendDay `json:"saturdays"`
	Sundays   []WeekendDay `json:"sundays"`
}

// WeekendsInYear lists every Saturday and Sunday of the year with its
// effective working flag.
func (c *Calendar) WeekendsInYear(year int) YearWeekends {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := YearWeekends{Year: year, Saturdays: []WeekendDay{}, Sundays: []WeekendDay{}}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := dateutil.Format(d)
		switch d.Weekday() {
		case time.Saturday:
			_, explicit := c.workingSaturdays[key]
			out.Saturdays = append(out.Saturdays, WeekendDay{Date: key, Working: explicit || c.workSaturday})
		case time.Sunday:
			_, explicit := c.workingSundays[key]
			out.Sundays = append(out.Sundays, WeekendDay{Date: key, Working: explicit || c.workSunday})
		}
	}
	return out
}

type Summary struct {
	TotalHolidays         int      `json:"total_holidays"`
	Holidays              []string `json:"holidays"`
	WorkSaturdayByDefault bool     `json:"work_saturday_by_default"`
	WorkSundayByDefault   bool     `json:"work_sunday_by_default"`
	WorkingSaturdays      int      `json:"working_saturdays_count"`
	WorkingSundays        int      `json:"working_sundays_count"`
}

func (c *Calendar) Summary() Summary {
	holidays := c.Holidays()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return Summary{
		TotalHolidays:         len(holidays),
		Holidays:              holidays,
		WorkSaturdayByDefault: c.workSaturday,
		WorkSundayByDefault:   c.workSunday,
		WorkingSaturdays:      len(c.workingSaturdays),
		WorkingSundays:        len(c.workingSundays),
	}
}

// Clear resets all calendar state.
func (c *Calendar) Clear(ctx context.Context) {
	c.mu.Lock()
	c.holidays = map[string]struct{}{}
	c.workingSaturdays = map[string]struct{}{}
	c.workingSundays = map[string]struct{}{}
	c.workSaturday = false
	c.workSunday = false
	c.mu.Unlock()

	c.persist(ctx)
}

func (c *Calendar) persist(ctx context.Context) {
	if c.store == nil {
		return
	}

	c.mu.RLock()
	cfg := &Config{
		Holidays:              fromSet(c.holidays),
		WorkingSaturdays:      fromSet(c.workingSaturdays),
		WorkingSundays:        fromSet(c.workingSundays),
		WorkSaturdayByDefault: c.workSaturday,
		WorkSundayByDefault:   c.workSunday,
	}
	c.mu.RUnlock()

	if err := c.store.Save(ctx, cfg); err != nil {
		c.logger.Error("failed to persist calendar configuration", zap.Error(err))
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

func copySet(src map[string]struct{}) map[string]struct{} {
	dst := make(map[string]struct{}, len(src))
	for k := range src {
		dst[k] = struct{}{}
	}
	return dst
}

func fromSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
