package services

import (
	"time"

	"github.com/hanyam/TaskManagement-sub002/config"
	"github.com/hanyam/TaskManagement-sub002/models"
)

// ReminderCalculator derives the urgency label for a task. The label is
// computed on read and never persisted.
type ReminderCalculator interface {
	Level(dueDate, createdAt *time.Time) models.ReminderLevel
}

type reminderCalculator struct {
	opts  config.ReminderOptions
	clock Clock
}

func NewReminderCalculator(opts config.ReminderOptions, clock Clock) ReminderCalculator {
	return &reminderCalculator{opts: opts, clock: clock}
}

func (c *reminderCalculator) Level(dueDate, createdAt *time.Time) models.ReminderLevel {
	if dueDate == nil {
		return models.ReminderNone
	}

	now := c.clock.Now()
	due := *dueDate

	// A passed due date is always critical.
	if due.Before(now) {
		return models.ReminderCritical
	}

	if c.opts.UseDayThresholds && len(c.opts.DayThresholds) > 0 {
		return c.byDaysRemaining(due, now)
	}

	if createdAt != nil {
		return c.byPercentageElapsed(due, *createdAt, now)
	}

	return c.byDaysRemaining(due, now)
}

func (c *reminderCalculator) byPercentageElapsed(due, created, now time.Time) models.ReminderLevel {
	totalDays := due.Sub(created).Hours() / 24
	if totalDays <= 0 {
		return models.ReminderCritical
	}

	elapsed := now.Sub(created).Hours() / 24
	ratio := elapsed / totalDays

	if ratio >= c.threshold("Critical", 0.90) {
		return models.ReminderCritical
	}
	if ratio >= c.threshold("High", 0.75) {
		return models.ReminderHigh
	}
	if ratio >= c.threshold("Medium", 0.50) {
		return models.ReminderMedium
	}
	if ratio >= c.threshold("Low", 0.25) {
		return models.ReminderLow
	}
	return models.ReminderNone
}

func (c *reminderCalculator) byDaysRemaining(due, now time.Time) models.ReminderLevel {
	remaining := due.Sub(now).Hours() / 24

	if remaining <= float64(c.dayThreshold("Critical", 1)) {
		return models.ReminderCritical
	}
	if remaining <= float64(c.dayThreshold("High", 3)) {
		return models.ReminderHigh
	}
	if remaining <= float64(c.dayThreshold("Medium", 7)) {
		return models.ReminderMedium
	}
	if remaining <= float64(c.dayThreshold("Low", 14)) {
		return models.ReminderLow
	}
	return models.ReminderNone
}

func (c *reminderCalculator) threshold(name string, fallback float64) float64 {
	if v, ok := c.opts.Thresholds[name]; ok {
		return v
	}
	return fallback
}

func (c *reminderCalculator) dayThreshold(name string, fallback int) int {
	if v, ok := c.opts.DayThresholds[name]; ok {
		return v
	}
	return fallback
}
