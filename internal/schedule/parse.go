package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse turns a textual schedule into a Schedule. Accepted forms:
//
//	every second | every minute | every hour | every day
//	daily at HH:MM[:SS] | every day at HH:MM[:SS]
//	@every 30s, @hourly, ... (cron descriptors)
//	any 5- or 6-field cron expression
func Parse(expr string) (Schedule, error) {
	s := strings.ToLower(strings.Join(strings.Fields(expr), " "))
	if s == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalid)
	}

	switch s {
	case "every second":
		return EverySecond(), nil
	case "every minute":
		return EveryMinute(), nil
	case "every hour":
		return EveryHour(), nil
	case "every day", "daily":
		return EveryDay(), nil
	}

	for _, prefix := range []string{"daily at ", "every day at "} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			h, m, sec, err := parseClock(rest)
			if err != nil {
				return nil, err
			}
			return DailyAt(h, m, sec)
		}
	}

	return Cron(strings.TrimSpace(expr))
}

// parseClock parses HH:MM or HH:MM:SS. Range checks are left to DailyAt so
// that the caller sees a *RangeError naming the offending component.
func parseClock(s string) (hour, minute, second int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("%w: expected HH:MM[:SS], got %q", ErrInvalid, s)
	}

	values := make([]int, 3)
	for i, p := range parts {
		v, convErr := strconv.Atoi(p)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("%w: invalid clock component %q", ErrInvalid, p)
		}
		values[i] = v
	}
	return values[0], values[1], values[2], nil
}

// Upcoming returns the next n firing instants after from.
func Upcoming(s Schedule, from time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	t := from
	for range n {
		next := s.Next(t)
		if !next.After(t) {
			break
		}
		out = append(out, next)
		t = next
	}
	return out
}
