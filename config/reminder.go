package config

// ReminderOptions tunes how reminder levels are derived from due dates.
// Percentage thresholds are fractions of the task's total duration that
// have elapsed; day thresholds are days remaining before the due date.
type ReminderOptions struct {
	UseDayThresholds bool
	Thresholds       map[string]float64
	DayThresholds    map[string]int
}

func DefaultReminderOptions() ReminderOptions {
	return ReminderOptions{
		UseDayThresholds: false,
		Thresholds: map[string]float64{
			"Low":      0.25,
			"Medium":   0.50,
			"High":     0.75,
			"Critical": 0.90,
		},
		DayThresholds: map[string]int{
			"Low":      14,
			"Medium":   7,
			"High":     3,
			"Critical": 1,
		},
	}
}
