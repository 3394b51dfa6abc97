package schedule

import "time"

// Daily fires once per day at a fixed time of day.
//
// Next always returns a time on the calendar day after from, even when the
// time of day has not yet passed on from's own date. A daily job registered
// at 09:00 for 12:00 therefore first fires tomorrow at 12:00, not today.
type Daily struct {
	hour, minute, second int
}

// EveryDay returns a Daily schedule firing at midnight.
func EveryDay() Daily {
	return Daily{}
}

// DailyAt returns a Daily schedule firing at hour:minute:second.
// It returns a *RangeError when a component is outside its bounds.
func DailyAt(hour, minute, second int) (Daily, error) {
	return EveryDay().At(hour, minute, second)
}

// MustDailyAt is like DailyAt but panics on invalid input.
func MustDailyAt(hour, minute, second int) Daily {
	d, err := DailyAt(hour, minute, second)
	if err != nil {
		panic(err)
	}
	return d
}

// At returns a copy of d firing at hour:minute:second.
func (d Daily) At(hour, minute, second int) (Daily, error) {
	if err := checkRange("hour", hour, 0, 23); err != nil {
		return Daily{}, err
	}
	if err := checkRange("minute", minute, 0, 59); err != nil {
		return Daily{}, err
	}
	if err := checkRange("second", second, 0, 59); err != nil {
		return Daily{}, err
	}
	return Daily{hour: hour, minute: minute, second: second}, nil
}

// TimeOfDay returns the configured firing time as an offset from midnight.
func (d Daily) TimeOfDay() time.Duration {
	return time.Duration(d.hour)*time.Hour +
		time.Duration(d.minute)*time.Minute +
		time.Duration(d.second)*time.Second
}

// Next implements Schedule.
func (d Daily) Next(from time.Time) time.Time {
	y, mo, day := from.Date()
	return time.Date(y, mo, day+1, d.hour, d.minute, d.second, 0, from.Location())
}
