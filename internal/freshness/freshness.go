// Package freshness classifies the age of price observations and flags
// statistically anomalous price changes. Both are advisory annotations:
// a stale or anomalous price is still served, only marked.
package freshness

import (
	"fmt"
	"math"
	"time"
)

// StaleAfterDays is the fixed staleness threshold. An observation aged
// exactly StaleAfterDays is still fresh; one day older is stale.
const StaleAfterDays = 7

// monthDays is the age at which the label stops counting days.
const monthDays = 30

// DayDiff returns the whole calendar-day difference between now and
// collectedAt in now's location, midnight to midnight. A price
// collected at 23:59 yesterday is 1 day old at 00:01 today. The hour
// quotient is rounded, not truncated: a DST transition makes a local
// day 23 or 25 hours long, and it still counts as exactly one day.
func DayDiff(now, collectedAt time.Time) int {
	loc := now.Location()
	a := collectedAt.In(loc)
	nowMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	thenMidnight := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, loc)
	return int(math.Round(nowMidnight.Sub(thenMidnight).Hours() / 24))
}

// IsStale reports whether an observation collected at collectedAt is
// older than the staleness threshold.
func IsStale(now, collectedAt time.Time) bool {
	return DayDiff(now, collectedAt) > StaleAfterDays
}

// Label renders a human-readable age for an observation.
func Label(now, collectedAt time.Time) string {
	switch d := DayDiff(now, collectedAt); {
	case d <= 0:
		return "today"
	case d == 1:
		return "yesterday"
	case d < monthDays:
		return fmt.Sprintf("%d days ago", d)
	default:
		return "more than a month ago"
	}
}

// Age describes the freshness annotation attached to a price.
type Age struct {
	Days  int    `json:"days"`
	Label string `json:"label"`
	Stale bool   `json:"stale"`
}

// AgeOf builds the full freshness annotation for an observation.
func AgeOf(now, collectedAt time.Time) Age {
	d := DayDiff(now, collectedAt)
	return Age{
		Days:  d,
		Label: Label(now, collectedAt),
		Stale: d > StaleAfterDays,
	}
}
