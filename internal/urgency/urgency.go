// Package urgency maps delivery dates to a bounded score used as the primary
// sort key for scheduling precedence.
package urgency

import (
	"time"

	"prodplan/pkg/dateutil"
)

// Neutral is the fallback score for unparseable delivery dates; the caller is
// never failed over a bad date string.
const Neutral = 50

// Score rates how close deliveryDate is to today, from 30 (far away) to 100
// (due or overdue).
func Score(deliveryDate string, today time.Time) int {
	delivery, err := dateutil.Parse(deliveryDate)
	if err != nil {
		return Neutral
	}

	daysRemaining := dateutil.DaysBetween(today, delivery)

	switch {
	case daysRemaining <= 0:
		return 100
	case daysRemaining <= 3:
		return 95
	case daysRemaining <= 7:
		return 85
	case daysRemaining <= 15:
		return 70
	case daysRemaining <= 30:
		return 50
	default:
		return 30
	}
}
