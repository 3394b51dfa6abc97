package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts 5-field expressions, an optional leading seconds field
// and descriptors such as @hourly or @every 30s.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type cronSchedule struct {
	expr  string
	inner cron.Schedule
}

// Cron parses a cron expression into a Schedule.
func Cron(expr string) (Schedule, error) {
	inner, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalid, expr, err)
	}
	return &cronSchedule{expr: expr, inner: inner}, nil
}

// Next implements Schedule. Expressions that can never match (such as
// 30 February) yield the zero time.
func (c *cronSchedule) Next(from time.Time) time.Time {
	return c.inner.Next(from)
}

func (c *cronSchedule) String() string { return c.expr }

// Every fires at a fixed interval measured from the previous instant,
// rounded to whole seconds with a one-second minimum.
func Every(interval time.Duration) Schedule {
	return cron.Every(interval)
}
