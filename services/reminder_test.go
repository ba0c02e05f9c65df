package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hanyam/TaskManagement-sub002/config"
	"github.com/hanyam/TaskManagement-sub002/models"
)

func TestReminderLevel_NoDueDate(t *testing.T) {
	calc := NewReminderCalculator(config.DefaultReminderOptions(), FixedClock{T: time.Now()})
	assert.Equal(t, models.ReminderNone, calc.Level(nil, nil))
}

func TestReminderLevel_PastDueIsCritical(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	calc := NewReminderCalculator(config.DefaultReminderOptions(), FixedClock{T: now})

	due := now.Add(-time.Hour)
	created := now.Add(-10 * 24 * time.Hour)
	assert.Equal(t, models.ReminderCritical, calc.Level(&due, &created))
}

func TestReminderLevel_PercentageElapsed(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	calc := NewReminderCalculator(config.DefaultReminderOptions(), FixedClock{T: now})

	// 100-day window created `elapsed` days ago.
	cases := []struct {
		elapsedDays int
		want        models.ReminderLevel
	}{
		{10, models.ReminderNone},
		{30, models.ReminderLow},
		{55, models.ReminderMedium},
		{80, models.ReminderHigh},
		{95, models.ReminderCritical},
	}
	for _, tc := range cases {
		created := now.Add(-time.Duration(tc.elapsedDays) * 24 * time.Hour)
		due := created.Add(100 * 24 * time.Hour)
		assert.Equal(t, tc.want, calc.Level(&due, &created), "elapsed %d days", tc.elapsedDays)
	}
}

func TestReminderLevel_DayThresholds(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	opts := config.DefaultReminderOptions()
	opts.UseDayThresholds = true
	calc := NewReminderCalculator(opts, FixedClock{T: now})

	cases := []struct {
		daysLeft float64
		want     models.ReminderLevel
	}{
		{0.5, models.ReminderCritical},
		{2, models.ReminderHigh},
		{5, models.ReminderMedium},
		{10, models.ReminderLow},
		{30, models.ReminderNone},
	}
	for _, tc := range cases {
		due := now.Add(time.Duration(tc.daysLeft * 24 * float64(time.Hour)))
		assert.Equal(t, tc.want, calc.Level(&due, nil), "%v days left", tc.daysLeft)
	}
}

func TestReminderLevel_FallsBackToDaysWithoutCreatedAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	calc := NewReminderCalculator(config.DefaultReminderOptions(), FixedClock{T: now})

	due := now.Add(2 * 24 * time.Hour)
	assert.Equal(t, models.ReminderHigh, calc.Level(&due, nil))
}
