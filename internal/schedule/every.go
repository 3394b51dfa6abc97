package schedule

import "time"

// EverySecond fires at the start of every second.
func EverySecond() Schedule {
	return Func(func(from time.Time) time.Time {
		return floorLocal(from, time.Second).Add(time.Second)
	})
}

// EveryMinute fires at the start of every minute.
func EveryMinute() Schedule {
	return Func(func(from time.Time) time.Time {
		return floorLocal(from, time.Minute).Add(time.Minute)
	})
}

// EveryHour fires at the start of every hour.
func EveryHour() Schedule {
	return Func(func(from time.Time) time.Time {
		return floorLocal(from, time.Hour).Add(time.Hour)
	})
}

// floorLocal drops the wall-clock components of from below unit. It works
// on the instant rather than rebuilding it with time.Date, which resolves an
// hour repeated by a DST change to its first occurrence.
func floorLocal(from time.Time, unit time.Duration) time.Time {
	rem := time.Duration(from.Nanosecond())
	if unit > time.Second {
		rem += time.Duration(from.Second()) * time.Second
	}
	if unit > time.Minute {
		rem += time.Duration(from.Minute()) * time.Minute
	}
	return from.Add(-rem)
}
