package scheduling

import "time"

// IntervalBand maps a mastery range to a review interval: a level
// strictly below MaxLevel that matched no earlier band falls into this
// one. Bands must be listed in ascending MaxLevel order.
type IntervalBand struct {
	MaxLevel float64 `json:"max_level"`
	Days     int     `json:"days"`
}

// ScheduleConfig holds the spacing ladder and the constraint-search
// horizon.
type ScheduleConfig struct {
	Bands       []IntervalBand `json:"bands"`
	DefaultDays int            `json:"default_days"`
	HorizonDays int            `json:"horizon_days"`
}

// DefaultScheduleConfig returns the production ladder: struggling
// topics come back tomorrow, mastered topics wait three weeks.
func DefaultScheduleConfig() *ScheduleConfig {
	return &ScheduleConfig{
		Bands: []IntervalBand{
			{MaxLevel: 20, Days: 1},
			{MaxLevel: 40, Days: 2},
			{MaxLevel: 55, Days: 4},
			{MaxLevel: 70, Days: 7},
			{MaxLevel: 85, Days: 14},
		},
		DefaultDays: 21,
		HorizonDays: 365,
	}
}

// IntervalDays returns the proposed number of days until the next
// review for the given mastery level. Non-decreasing in level, with a
// floor of one day.
func (c *ScheduleConfig) IntervalDays(level float64) int {
	for _, band := range c.Bands {
		if level < band.MaxLevel {
			if band.Days < 1 {
				return 1
			}
			return band.Days
		}
	}
	if c.DefaultDays < 1 {
		return 1
	}
	return c.DefaultDays
}

// StartOfDay truncates to calendar-day granularity in the time's own
// location. Review dates carry no time-of-day component.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayKey is the collision key for the subject-exclusivity check: two
// reviews at different times of the same day still collide.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
