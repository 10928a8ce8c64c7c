package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// RefreshWindow reports whether upstream refreshes are allowed at t
type RefreshWindow func(t time.Time) bool

// AlwaysOpen allows refreshes at any time
func AlwaysOpen(time.Time) bool { return true }

// ParseRefreshWindow builds a window from a standard five-field cron
// expression. The window is open during every minute the expression matches,
// so "* 7-21 * * 4-6,0" is open 07:00-21:59 Thursday through Sunday. A
// CRON_TZ= prefix pins the zone. An empty expression is always open.
func ParseRefreshWindow(expr string) (RefreshWindow, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return AlwaysOpen, nil
	}

	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh window %q: %w", expr, err)
	}

	return func(t time.Time) bool {
		minute := t.Truncate(time.Minute)
		return schedule.Next(minute.Add(-time.Second)).Equal(minute)
	}, nil
}
