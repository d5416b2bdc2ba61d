// Package timeutil normalizes mixed calendar time values into a single
// display timezone and computes the two-day planning window. Every other
// component goes through it instead of touching locations directly.
package timeutil

import (
	"time"

	appLog "github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/log"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/model"
)

// LoadLocation resolves an IANA timezone name, falling back to time.Local
// when the name does not resolve. It never fails: an unknown zone is a
// configuration problem, not a reason to abort a run.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Warn("unknown timezone, using local", "timezone", name)
		return time.Local
	}
	return loc
}

// Normalize anchors a time value into loc:
//
//   - dates pass through unchanged (a calendar day has no timezone)
//   - floating instants are reinterpreted as already being wall-clock
//     time in loc
//   - anchored instants are converted into loc
//
// It never fails; there is no error path in any branch.
func Normalize(v model.TimeValue, loc *time.Location) model.TimeValue {
	if loc == nil {
		loc = time.Local
	}
	if v.Kind == model.KindDate || v.IsZero() {
		return v
	}
	if v.Floating {
		v.Time = RebuildWallClock(v.Time, loc)
		v.Floating = false
		return v
	}
	v.Time = v.Time.In(loc)
	return v
}

// FloorDay returns midnight of t's day in loc.
func FloorDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Window returns the inclusive two-day expansion window
// [floor(now, day), floor(now, day) + 2 days] in loc.
func Window(now time.Time, loc *time.Location) (time.Time, time.Time) {
	start := FloorDay(now, loc)
	return start, start.AddDate(0, 0, 2)
}

// ToWallClock strips the zone from t, rebuilding the same wall-clock
// reading in UTC. Recurrence rules are evaluated in this zone-less domain
// so that a rule's start and its UNTIL bound agree.
func ToWallClock(t time.Time) time.Time {
	return RebuildWallClock(t, time.UTC)
}

// RebuildWallClock re-creates t's wall-clock reading in loc.
func RebuildWallClock(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), loc)
}
