package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// nextCronOccurrence expands a standard 5-field cron expression to its next
// occurrence at or after from, expanded lazily one tick at a time per
// spec.md §4.4's "Cron scheduling" ("each tick schedules only the next
// occurrence").
func nextCronOccurrence(expression string, from time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(expression)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", expression, err)
	}
	return schedule.Next(from), nil
}
