package ics

import (
	"bytes"
	"strings"
	"time"

	duration "github.com/ChannelMeter/iso8601duration"
	ical "github.com/arran4/golang-ical"

	appLog "github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/log"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/model"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/timeutil"
)

// Component is the normalized form of one VEVENT from the merged payload.
// Times are kept in their source anchoring; normalization into the display
// timezone happens during expansion.
type Component struct {
	UID string

	Summary     string
	Description string
	Location    string

	Status       string
	Transparency string

	Begin    model.TimeValue
	End      model.TimeValue
	HasStart bool
	HasEnd   bool

	// Duration is the DURATION property, used for end defaulting when no
	// DTEND is present.
	Duration *time.Duration

	RawRRule     string
	ExDates      []model.TimeValue
	RecurrenceID *model.TimeValue
}

// Classified is the outcome of the classification pass: recurrence
// masters, per-occurrence overrides, and the set of occurrence keys
// removed by cancellation.
type Classified struct {
	Masters   []Component
	Overrides map[model.OccurrenceKey]Component
	Cancelled map[model.OccurrenceKey]struct{}
}

// Classify parses the merged calendar payload and buckets every VEVENT
// into masters, overrides, and cancelled keys. A malformed payload yields
// an empty classification, never an error to the caller; individual
// unparsable components are skipped the same way.
func Classify(payload []byte, loc *time.Location) Classified {
	out := Classified{
		Overrides: make(map[model.OccurrenceKey]Component),
		Cancelled: make(map[model.OccurrenceKey]struct{}),
	}

	if len(bytes.TrimSpace(payload)) == 0 {
		appLog.Warn("classify: empty calendar payload")
		return out
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(payload))
	if err != nil {
		appLog.Error("classify: calendar payload unparsable", err)
		return out
	}

	for _, ve := range cal.Events() {
		comp, perr := parseVEvent(ve, loc)
		if perr != nil {
			appLog.Warn("classify: skipping vevent", "reason", perr.Error())
			continue
		}

		key := model.SeriesKey(comp.UID)
		if comp.RecurrenceID != nil {
			key = model.KeyFor(comp.UID, timeutil.Normalize(*comp.RecurrenceID, loc))
		}

		if isCancelled(comp) {
			out.Cancelled[key] = struct{}{}
			continue
		}

		if comp.RecurrenceID != nil {
			out.Overrides[key] = comp
		} else {
			out.Masters = append(out.Masters, comp)
		}
	}

	appLog.Info("classify: payload bucketed",
		"masters", len(out.Masters),
		"overrides", len(out.Overrides),
		"cancelled", len(out.Cancelled),
	)
	return out
}

// isCancelled computes the cancellation verdict for one component:
//
//   - STATUS is CANCELLED
//   - summary or description contains "cancel" (case-insensitive)
//   - transparency is opaque with no start time
//   - an all-day span longer than one day with an empty summary
//   - an override (RECURRENCE-ID) whose status is cancelled or that
//     carries no summary, location, and description (deletion marker)
func isCancelled(c Component) bool {
	if strings.EqualFold(c.Status, "CANCELLED") {
		return true
	}
	if containsCancel(c.Summary) || containsCancel(c.Description) {
		return true
	}
	if strings.EqualFold(c.Transparency, "OPAQUE") && !c.HasStart {
		return true
	}
	if c.HasStart && c.HasEnd && c.Begin.IsDate() && c.End.IsDate() {
		span := int(c.End.Time.Sub(c.Begin.Time).Hours() / 24)
		if span > 1 && c.Summary == "" {
			return true
		}
	}
	if c.RecurrenceID != nil {
		if c.Summary == "" && c.Location == "" && c.Description == "" {
			return true
		}
	}
	return false
}

// containsCancel is the free-text cancellation heuristic. It is knowingly
// an over-approximation ("Post-cancellation review" matches too).
func containsCancel(s string) bool {
	return strings.Contains(strings.ToLower(s), "cancel")
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (Component, error) {
	var out Component

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil {
		out.Status = p.Value
	}
	if p := ve.GetProperty("TRANSP"); p != nil {
		out.Transparency = p.Value
	}

	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		v, err := parseTimeProp(p, loc)
		if err != nil {
			return out, err
		}
		out.Begin = v
		out.HasStart = true
	}
	if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
		v, err := parseTimeProp(p, loc)
		if err != nil {
			return out, err
		}
		out.End = v
		out.HasEnd = true
	}

	// DURATION is the fallback for end defaulting when DTEND is absent.
	if p := ve.GetProperty("DURATION"); p != nil && p.Value != "" {
		if d, err := duration.FromString(p.Value); err == nil {
			dur := d.ToDuration()
			out.Duration = &dur
		} else {
			appLog.Warn("classify: unparsable DURATION", "uid", out.UID, "value", p.Value)
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	// EXDATE may appear multiple times, each with a comma-separated list.
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if v, err := parseTimeString(part, propTZID(p), loc); err == nil {
				out.ExDates = append(out.ExDates, v)
			} else {
				appLog.Warn("classify: unparsable EXDATE", "uid", out.UID, "value", part)
			}
		}
	}

	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		if v, err := parseTimeProp(p, loc); err == nil {
			out.RecurrenceID = &v
		} else {
			appLog.Warn("classify: unparsable RECURRENCE-ID", "uid", out.UID, "value", p.Value)
		}
	}

	return out, nil
}

// parseTimeProp parses a date/date-time property honoring VALUE=DATE and
// TZID parameters.
func parseTimeProp(p *ical.IANAProperty, loc *time.Location) (model.TimeValue, error) {
	if params := p.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return parseTimeString(p.Value, "", loc)
		}
	}
	return parseTimeString(p.Value, propTZID(p), loc)
}

func propTZID(p *ical.IANAProperty) string {
	if params := p.ICalParameters; params != nil {
		if tzs, ok := params["TZID"]; ok && len(tzs) > 0 {
			return tzs[0]
		}
	}
	return ""
}

// parseTimeString parses the three basic ICS time shapes:
//
//	20060102          -> calendar date
//	20060102T150405Z  -> UTC-anchored instant
//	20060102T150405   -> TZID-anchored instant, or floating when no TZID
func parseTimeString(v, tzid string, loc *time.Location) (model.TimeValue, error) {
	v = strings.TrimSpace(v)

	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse("20060102T150405Z", v)
		if err != nil {
			return model.TimeValue{}, err
		}
		return model.Instant(t), nil
	}

	if strings.Contains(v, "T") {
		if tzid != "" {
			if tzloc, err := time.LoadLocation(tzid); err == nil {
				t, perr := time.ParseInLocation("20060102T150405", v, tzloc)
				if perr != nil {
					return model.TimeValue{}, perr
				}
				return model.Instant(t), nil
			}
			appLog.Warn("classify: unknown TZID, treating time as floating", "tzid", tzid)
		}
		t, err := time.ParseInLocation("20060102T150405", v, loc)
		if err != nil {
			return model.TimeValue{}, err
		}
		return model.FloatingInstant(t), nil
	}

	t, err := time.Parse("20060102", v)
	if err != nil {
		return model.TimeValue{}, err
	}
	return model.Date(t.Year(), t.Month(), t.Day()), nil
}
