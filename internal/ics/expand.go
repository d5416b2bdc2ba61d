package ics

import (
	"regexp"
	"time"

	"github.com/teambition/rrule-go"

	appLog "github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/log"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/model"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/timeutil"
)

const (
	defaultMaxOccurrencesPerEvent = 5000
	defaultEventDuration          = time.Hour
)

var untilUTCPattern = regexp.MustCompile(`UNTIL=(\d{8}T\d{6})Z`)

// ResolveConfig controls one resolution pass.
type ResolveConfig struct {
	// Location is the display timezone all instances are normalized into.
	// If nil, time.Local is used.
	Location *time.Location

	// Now anchors the two-day expansion window. If zero, time.Now is used.
	Now time.Time

	// MaxOccurrencesPerEvent caps expansion per series as a safety bound.
	// If zero, defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// Finding is one human-readable diagnostic produced while resolving.
// Findings never abort the run; they exist so the failure mode of a
// skipped series is inspectable instead of silent.
type Finding struct {
	UID    string
	Stage  string
	Detail string
}

func (f Finding) String() string {
	return f.Stage + ": " + f.Detail + " (uid=" + f.UID + ")"
}

// ResolveResult is the aggregate of one pass: resolved instances plus the
// diagnostics for every unit that had to be skipped or defaulted.
type ResolveResult struct {
	Events   []model.Event
	Findings []Finding
}

// Resolve runs both passes over the merged calendar payload: classify
// every VEVENT, then expand each surviving master over the active window.
// It never returns an error; a malformed payload resolves to zero events.
func Resolve(payload []byte, cfg ResolveConfig) ResolveResult {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	cls := Classify(payload, cfg.Location)
	return Expand(cls, cfg)
}

// Expand materializes every master of a classification into concrete
// instances. A failure in one master is recorded and skips only that
// master.
func Expand(cls Classified, cfg ResolveConfig) ResolveResult {
	var result ResolveResult

	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	for _, m := range cls.Masters {
		if _, gone := cls.Cancelled[model.SeriesKey(m.UID)]; gone {
			continue
		}
		events, findings := expandMaster(m, cls, cfg)
		result.Events = append(result.Events, events...)
		result.Findings = append(result.Findings, findings...)
	}

	for _, f := range result.Findings {
		appLog.Warn("expand: " + f.String())
	}
	return result
}

func expandMaster(m Component, cls Classified, cfg ResolveConfig) ([]model.Event, []Finding) {
	if !m.HasStart {
		return nil, []Finding{{UID: m.UID, Stage: "expand", Detail: "master has no start"}}
	}

	end, dfind := effectiveEnd(m, m.Begin)

	if m.RawRRule == "" {
		return []model.Event{makeEvent(m, m.Begin, end, cfg.Location, false)}, dfind
	}
	events, findings := expandRecurring(m, end, cls, cfg)
	return events, append(dfind, findings...)
}

// effectiveEnd applies duration defaulting for a component relative to
// begin: explicit end when its variant matches, then DURATION, then one
// hour for timed events or the same day for all-day events. The returned
// value never precedes begin.
func effectiveEnd(c Component, begin model.TimeValue) (model.TimeValue, []Finding) {
	if c.HasEnd && c.End.Kind == begin.Kind {
		if !c.End.Time.Before(begin.Time) {
			return c.End, nil
		}
		f := Finding{UID: c.UID, Stage: "duration", Detail: "end precedes start, defaulted"}
		return defaultEnd(begin), []Finding{f}
	}
	if c.HasEnd {
		f := Finding{UID: c.UID, Stage: "duration", Detail: "mixed date/datetime bounds, end defaulted"}
		return defaultEnd(begin), []Finding{f}
	}
	if c.Duration != nil && !begin.IsDate() {
		v := begin
		v.Time = v.Time.Add(*c.Duration)
		return v, nil
	}
	return defaultEnd(begin), nil
}

func defaultEnd(begin model.TimeValue) model.TimeValue {
	if begin.IsDate() {
		return begin
	}
	v := begin
	v.Time = v.Time.Add(defaultEventDuration)
	return v
}

func expandRecurring(m Component, end model.TimeValue, cls Classified, cfg ResolveConfig) ([]model.Event, []Finding) {
	var findings []Finding
	loc := cfg.Location

	winStart, winEnd := timeutil.Window(cfg.Now, loc)

	anchors, ferr := occurrenceAnchors(m, winStart, winEnd, loc)
	if ferr != nil {
		return nil, append(findings, *ferr)
	}
	if len(anchors) > cfg.MaxOccurrencesPerEvent {
		anchors = anchors[:cfg.MaxOccurrencesPerEvent]
		findings = append(findings, Finding{UID: m.UID, Stage: "expand", Detail: "occurrence cap hit"})
	}

	// Master duration carried onto every generated occurrence.
	durDays := 0
	dur := defaultEventDuration
	if m.Begin.IsDate() {
		durDays = int(end.Time.Sub(m.Begin.Time).Hours() / 24)
	} else {
		localBegin := timeutil.Normalize(m.Begin, loc)
		localEnd := timeutil.Normalize(end, loc)
		if d := localEnd.Time.Sub(localBegin.Time); d >= 0 {
			dur = d
		}
	}

	var out []model.Event
	for _, a := range anchors {
		if excludedDate(a, m.ExDates, loc) {
			continue
		}
		key := model.KeyFor(m.UID, a)
		if _, gone := cls.Cancelled[key]; gone {
			continue
		}

		if ov, ok := cls.Overrides[key]; ok {
			ovBegin := a
			if ov.HasStart {
				ovBegin = ov.Begin
			}
			ovEnd, dfind := effectiveEnd(ov, ovBegin)
			findings = append(findings, dfind...)
			out = append(out, makeEvent(ov, ovBegin, ovEnd, loc, true))
			continue
		}

		occEnd := a
		if a.IsDate() {
			occEnd = a.AddDays(durDays)
		} else {
			occEnd.Time = occEnd.Time.Add(dur)
		}
		out = append(out, makeEvent(m, a, occEnd, loc, true))
	}
	return out, findings
}

// occurrenceAnchors evaluates the recurrence rule over the window. Rules
// are evaluated in a zone-less wall-clock domain: a timezone-aware start
// and an UNTIL bound expressed in UTC are both rebuilt as naive local
// readings first, and the produced anchors are converted back into loc.
func occurrenceAnchors(m Component, winStart, winEnd time.Time, loc *time.Location) ([]model.TimeValue, *Finding) {
	if m.Begin.IsDate() {
		r, err := rrule.StrToRRule(m.RawRRule)
		if err != nil {
			return nil, &Finding{UID: m.UID, Stage: "rrule", Detail: err.Error()}
		}
		r.DTStart(m.Begin.Time)
		occs := r.Between(timeutil.ToWallClock(winStart), timeutil.ToWallClock(winEnd), true)
		anchors := make([]model.TimeValue, 0, len(occs))
		for _, o := range occs {
			anchors = append(anchors, model.DateOf(o))
		}
		return anchors, nil
	}

	localStart := timeutil.Normalize(m.Begin, loc)
	r, err := rrule.StrToRRule(rewriteUntilToLocal(m.RawRRule, loc))
	if err != nil {
		return nil, &Finding{UID: m.UID, Stage: "rrule", Detail: err.Error()}
	}
	r.DTStart(timeutil.ToWallClock(localStart.Time))
	occs := r.Between(timeutil.ToWallClock(winStart), timeutil.ToWallClock(winEnd), true)
	anchors := make([]model.TimeValue, 0, len(occs))
	for _, o := range occs {
		anchors = append(anchors, model.Instant(timeutil.RebuildWallClock(o, loc)))
	}
	return anchors, nil
}

// excludedDate reports whether anchor matches an EXDATE, either exactly
// or, for a date-valued EXDATE against a timed occurrence, by day.
func excludedDate(anchor model.TimeValue, exdates []model.TimeValue, loc *time.Location) bool {
	for _, ex := range exdates {
		exv := timeutil.Normalize(ex, loc)
		if exv.Token() == anchor.Token() {
			return true
		}
		if exv.IsDate() && !anchor.IsDate() && exv.Token() == model.DateOf(anchor.Time).Token() {
			return true
		}
	}
	return false
}

func makeEvent(c Component, begin, end model.TimeValue, loc *time.Location, recurring bool) model.Event {
	b := timeutil.Normalize(begin, loc)
	e := timeutil.Normalize(end, loc)
	return model.Event{
		UID:         c.UID,
		Summary:     c.Summary,
		Description: c.Description,
		Location:    c.Location,
		Begin:       b,
		End:         e,
		AllDay:      b.IsDate(),
		Recurring:   recurring,
	}
}

// rewriteUntilToLocal rewrites an UNTIL=...Z bound into the same moment's
// naive wall-clock reading in loc so it agrees with a naive-local DTSTART.
func rewriteUntilToLocal(rule string, loc *time.Location) string {
	match := untilUTCPattern.FindStringSubmatch(rule)
	if match == nil {
		return rule
	}
	utc, err := time.Parse("20060102T150405", match[1])
	if err != nil {
		appLog.Warn("expand: unparsable UNTIL bound", "value", match[1])
		return rule
	}
	return untilUTCPattern.ReplaceAllString(rule, "UNTIL="+utc.In(loc).Format("20060102T150405"))
}
