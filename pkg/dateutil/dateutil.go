// Package dateutil handles the date formats used at the service boundary.
// The catalog spreadsheet and the UI exchange dates as DD/MM/YYYY; ISO
// YYYY-MM-DD is accepted as a fallback, in that order.
package dateutil

import (
	"fmt"
	"time"
)

const (
	LayoutBR  = "02/01/2006"
	LayoutISO = "2006-01-02"
)

// Parse tries the slash format first, then the dash format.
func Parse(s string) (time.Time, error) {
	if t, err := time.Parse(LayoutBR, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(LayoutISO, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable date %q (expected DD/MM/YYYY or YYYY-MM-DD)", s)
}

// Format renders a date in the DD/MM/YYYY wire format.
func Format(t time.Time) string {
	return t.Format(LayoutBR)
}

// Truncate strips the time-of-day component.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the whole-day difference b-a after truncation.
func DaysBetween(a, b time.Time) int {
	return int(Truncate(b).Sub(Truncate(a)).Hours() / 24)
}
