package risk

import (
	"time"
	_ "time/tzdata"
)

// Regular session bounds in the trading-calendar timezone.
const (
	sessionOpen  = 9*60 + 30
	sessionClose = 16 * 60
)

// IsRegularTradingHours reports whether t falls on a local weekday between
// 09:30 and 16:00 inclusive. The weekday is taken from the local calendar
// date, not the UTC one.
func IsRegularTradingHours(t time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minutes := local.Hour()*60 + local.Minute()
	if minutes < sessionOpen || minutes > sessionClose {
		return false
	}
	// 16:00:01 is already after the close.
	if minutes == sessionClose && (local.Second() > 0 || local.Nanosecond() > 0) {
		return false
	}
	return true
}
