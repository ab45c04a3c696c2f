package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var scheduleParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// drawSchedule is the parsed raffle.draw_at.
type drawSchedule struct {
	raw   string
	sched cron.Schedule
	loc   *time.Location
}

func parseDrawAt(raw, timezone string) (*drawSchedule, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	loc := time.Local
	if tz := strings.TrimSpace(timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("raffle.timezone: %w", err)
		}
		loc = l
	}
	s, err := scheduleParser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("raffle.draw_at: %w", err)
	}
	return &drawSchedule{raw: raw, sched: s, loc: loc}, nil
}

// Next returns the first fire time strictly after now.
func (d *drawSchedule) Next(now time.Time) time.Time {
	return d.sched.Next(now.In(d.loc))
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
