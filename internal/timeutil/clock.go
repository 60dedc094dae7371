package timeutil

import (
	"os"
	"time"
)

// Site is the timezone work log dates are interpreted in. Defaults to the
// server's local zone, overridable with SITE_TZ (e.g. "Europe/Berlin").
var Site *time.Location

func init() {
	Site = time.Local
	if tz := os.Getenv("SITE_TZ"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			Site = loc
		}
	}
}

// Now returns the current time in the site timezone.
func Now() time.Time {
	return time.Now().In(Site)
}

// StartOfDay returns midnight of t's day in the site timezone.
func StartOfDay(t time.Time) time.Time {
	s := t.In(Site)
	return time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, Site)
}

// ParseDate parses a "YYYY-MM-DD" date in the site timezone.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, Site)
}

// Common layouts
const (
	DateLayout    = "2006-01-02"
	ClockLayout   = "15:04"
	DisplayLayout = "02 Jan 2006"
)
