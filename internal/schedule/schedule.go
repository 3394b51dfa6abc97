// Package schedule computes when a recurring job fires next.
//
// A Schedule is a pure function from an instant to a strictly later instant.
// Built-in schedules round down to a unit boundary and advance by one unit
// (EverySecond, EveryMinute, EveryHour), fire once per day (EveryDay,
// DailyAt), or delegate to a cron expression (Cron, Every).
package schedule

import "time"

// Schedule yields the next firing instant after from.
// Implementations must be deterministic and return a value strictly after from.
type Schedule interface {
	Next(from time.Time) time.Time
}

// Func adapts a plain function to Schedule.
type Func func(from time.Time) time.Time

// Next implements Schedule.
func (f Func) Next(from time.Time) time.Time { return f(from) }
