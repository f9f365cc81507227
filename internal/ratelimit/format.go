package ratelimit

import (
	"fmt"
	"math"
	"time"
)

// FormatWait renders a cooldown for humans, e.g. "5 seconds" or "2 hours".
func FormatWait(d time.Duration) string {
	seconds := d.Seconds()

	switch {
	case seconds < 60:
		return plural(int(math.Round(seconds)), "second")
	case seconds < 3600:
		return plural(int(math.Round(seconds/60)), "minute")
	case seconds < 86400:
		return plural(int(math.Round(seconds/3600)), "hour")
	default:
		return plural(int(math.Round(seconds/86400)), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
