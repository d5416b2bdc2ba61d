package model

import (
	"strconv"
	"time"
)

// TimeKind discriminates the two shapes a calendar time can take.
type TimeKind int

const (
	// KindInstant is a point in time anchored to some timezone.
	KindInstant TimeKind = iota
	// KindDate is a whole calendar day with no time-of-day and no timezone.
	KindDate
)

// TimeValue is the tagged date-or-instant value used throughout the
// pipeline. The two variants are never mixed within one event: an all-day
// event carries KindDate bounds, a timed event carries KindInstant bounds.
type TimeValue struct {
	Kind TimeKind

	// Time holds the instant for KindInstant. For KindDate it holds
	// midnight of the calendar date in UTC and its zone carries no meaning.
	Time time.Time

	// Floating marks a KindInstant value that carried no timezone in the
	// source payload. Floating instants are reinterpreted, not converted,
	// when normalized into the display timezone.
	Floating bool
}

// Instant wraps a timezone-anchored point in time.
func Instant(t time.Time) TimeValue {
	return TimeValue{Kind: KindInstant, Time: t}
}

// FloatingInstant wraps a point in time whose source had no timezone.
func FloatingInstant(t time.Time) TimeValue {
	return TimeValue{Kind: KindInstant, Time: t, Floating: true}
}

// Date wraps a whole calendar day.
func Date(year int, month time.Month, day int) TimeValue {
	return TimeValue{Kind: KindDate, Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf wraps the calendar day on which t falls, in t's own zone.
func DateOf(t time.Time) TimeValue {
	return Date(t.Year(), t.Month(), t.Day())
}

func (v TimeValue) IsZero() bool { return v.Time.IsZero() }

func (v TimeValue) IsDate() bool { return v.Kind == KindDate }

// DayStart returns midnight of the value's day in loc. For instants the
// instant's own wall-clock day is used (the caller is expected to have
// normalized into loc already).
func (v TimeValue) DayStart(loc *time.Location) time.Time {
	y, m, d := v.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// SortAnchor is the concrete time used for ordering: dates anchor at
// their midnight in loc, instants at themselves.
func (v TimeValue) SortAnchor(loc *time.Location) time.Time {
	if v.Kind == KindDate {
		return v.DayStart(loc)
	}
	return v.Time
}

// AddDays shifts the value by whole days, preserving the variant.
func (v TimeValue) AddDays(n int) TimeValue {
	v.Time = v.Time.AddDate(0, 0, n)
	return v
}

// Token is the canonical occurrence identity for this value: the day
// stamp for dates, the UTC unix second for instants. Two representations
// of the same occurrence yield the same token regardless of source zone.
func (v TimeValue) Token() string {
	if v.Kind == KindDate {
		return v.Time.Format("20060102")
	}
	return strconv.FormatInt(v.Time.Unix(), 10)
}

// Equal reports whether two values denote the same occurrence anchor.
func (v TimeValue) Equal(o TimeValue) bool {
	return v.Kind == o.Kind && v.Token() == o.Token()
}

// Event is one canonical resolved calendar instance. For recurring
// series the UID is shared by every instance; (UID, Begin) identifies one
// occurrence.
type Event struct {
	UID string

	Summary     string
	Description string
	Location    string

	// Begin / End are both dates (all-day) or both display-zone instants.
	Begin TimeValue
	End   TimeValue

	AllDay    bool
	Recurring bool

	// CalName is filled in by the presentation layer, never by resolution.
	CalName string

	// Icon and DisplayTime are assigned by the formatter before layout.
	Icon        string
	DisplayTime string
}

// OccurrenceKey is the stable identity of one occurrence of a series, or
// of the whole series when Occurrence is empty. It is used as the map and
// set key for overrides and cancellations.
type OccurrenceKey struct {
	UID        string
	Occurrence string
}

// KeyFor builds the key for one occurrence anchor of a series.
func KeyFor(uid string, v TimeValue) OccurrenceKey {
	return OccurrenceKey{UID: uid, Occurrence: v.Token()}
}

// SeriesKey builds the key addressing a whole series.
func SeriesKey(uid string) OccurrenceKey {
	return OccurrenceKey{UID: uid}
}

// Page is one unit of layout output: an ordered slice of events followed
// by an ordered slice of task strings, bounded by the configured capacity
// except for the single-page shortcut.
type Page struct {
	Events []Event
	Tasks  []string
}

// Total is the combined item count on the page.
func (p Page) Total() int { return len(p.Events) + len(p.Tasks) }
