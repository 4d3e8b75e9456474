package urgency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"prodplan/pkg/dateutil"
)

func TestScore(t *testing.T) {
	today := time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		days int
		want int
	}{
		{"overdue", -5, 100},
		{"due today", 0, 100},
		{"tomorrow", 1, 95},
		{"three days", 3, 95},
		{"four days", 4, 85},
		{"one week", 7, 85},
		{"eight days", 8, 70},
		{"two weeks", 15, 70},
		{"sixteen days", 16, 50},
		{"one month", 30, 50},
		{"far future", 31, 30},
		{"very far future", 200, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delivery := dateutil.Format(today.AddDate(0, 0, tt.days))
			assert.Equal(t, tt.want, Score(delivery, today))
		})
	}
}

func TestScoreISOFallback(t *testing.T) {
	today := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 95, Score("2026-06-17", today))
}

func TestScoreUnparseable(t *testing.T) {
	today := time.Now()
	assert.Equal(t, Neutral, Score("soon", today))
	assert.Equal(t, Neutral, Score("", today))
}
