package entity

import (
	"fmt"
	"time"
)

// RateWindow limits how many views a client may complete within a trailing duration.
type RateWindow struct {
	Name      string
	Duration  time.Duration
	MaxEvents int64
}

// DefaultRateWindows is the fraud prevention policy applied when none is configured.
var DefaultRateWindows = []RateWindow{
	{Name: "5-minute", Duration: 5 * time.Minute, MaxEvents: 5},
	{Name: "hourly", Duration: time.Hour, MaxEvents: 20},
	{Name: "daily", Duration: 24 * time.Hour, MaxEvents: 50},
}

// ClientViewTick is one admitted view attempt of a client, used only for rate limiting.
type ClientViewTick struct {
	ClientID   string
	OccurredAt time.Time
}

// Verdict is the answer of the rate limiter. The zero value is not meaningful;
// use Allowed or Denied.
type Verdict struct {
	Allowed bool
	Window  RateWindow // Window is the first violated window when Allowed is false.
	Count   int64      // Count is the number of ticks found in the violated window.
}

// Allowed returns an admitting verdict.
func Allowed() Verdict {
	return Verdict{Allowed: true}
}

// Denied returns a verdict rejecting the client because of w.
func Denied(w RateWindow, count int64) Verdict {
	return Verdict{Window: w, Count: count}
}

// Reason describes the violated window in a form suitable for the visitor.
func (v Verdict) Reason() string {
	if v.Allowed {
		return "view allowed"
	}

	return fmt.Sprintf("%s limit exceeded: max %d views per %s",
		capitalize(v.Window.Name), v.Window.MaxEvents, humanizeDuration(v.Window.Duration))
}

// EvaluateWindows applies windows in order and denies on the first one the
// client has exhausted. count reports the ticks strictly after since; a window
// of duration d and limit n is exhausted when count(now-d) >= n.
func EvaluateWindows(windows []RateWindow, now time.Time, count func(since time.Time) (int64, error)) (Verdict, error) {
	for _, w := range windows {
		n, err := count(now.Add(-w.Duration))
		if err != nil {
			return Verdict{}, fmt.Errorf("failed to count ticks for %s window: %w", w.Name, err)
		}
		if n >= w.MaxEvents {
			return Denied(w, n), nil
		}
	}

	return Allowed(), nil
}

// WindowCount is the number of ticks a client has within one window.
type WindowCount struct {
	Window RateWindow
	Count  int64
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}

func humanizeDuration(d time.Duration) string {
	const day = 24 * time.Hour

	switch {
	case d == day:
		return "day"
	case d == time.Hour:
		return "hour"
	case d == time.Minute:
		return "minute"
	case d%day == 0:
		return fmt.Sprintf("%d days", d/day)
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
