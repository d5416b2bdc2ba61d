// Package agenda turns resolved calendar instances into renderer-facing
// pages: validation, display formatting, balanced pagination, and page
// context assembly.
package agenda

import (
	"fmt"
	"sort"
	"strings"
	"time"

	appLog "github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/log"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/model"
)

type dedupKey struct {
	Summary string
	Begin   string
	End     string
	AllDay  bool
}

// Validate cleans and audits the resolved event list in one pass:
//
//  1. duplicates (summary, begin, end, all-day) are dropped, first wins
//  2. events still carrying cancellation text are dropped
//  3. all-day events spanning more than one day are dropped
//  4. ordering violations are recorded but never removed
//  5. events are regrouped by day, all-day first, then (begin, summary)
//
// The findings list is the side channel for every issue observed; it is
// logged here and also returned so callers can persist it.
func Validate(events []model.Event, loc *time.Location) ([]model.Event, []string) {
	if loc == nil {
		loc = time.Local
	}

	seen := make(map[dedupKey]struct{}, len(events))
	var issues []string
	var lastDay, lastAnchor time.Time
	kept := make([]model.Event, 0, len(events))

	for _, ev := range events {
		key := dedupKey{ev.Summary, ev.Begin.Token(), ev.End.Token(), ev.AllDay}
		drop := false

		if _, dup := seen[key]; dup {
			issues = append(issues, fmt.Sprintf("duplicate event: %q at %s", ev.Summary, ev.Begin.SortAnchor(loc)))
			drop = true
		} else {
			seen[key] = struct{}{}
		}

		if hasCancellationText(ev.Summary) || hasCancellationText(ev.Description) {
			issues = append(issues, fmt.Sprintf("cancelled event present: %q at %s", ev.Summary, ev.Begin.SortAnchor(loc)))
			drop = true
		}

		if ev.AllDay {
			span := int(ev.End.DayStart(loc).Sub(ev.Begin.DayStart(loc)).Hours() / 24)
			if span > 1 {
				issues = append(issues, fmt.Sprintf("all-day event bleeding into next day: %q", ev.Summary))
				drop = true
			}
		}

		// Ordering audit over the input sequence; observability only.
		day := ev.Begin.DayStart(loc)
		anchor := ev.Begin.SortAnchor(loc)
		if !lastDay.IsZero() && day.Before(lastDay) {
			issues = append(issues, fmt.Sprintf("out-of-order day: %q at %s", ev.Summary, anchor))
		}
		if day.Equal(lastDay) && !lastAnchor.IsZero() && anchor.Before(lastAnchor) {
			issues = append(issues, fmt.Sprintf("out-of-order time: %q at %s", ev.Summary, anchor))
		}
		lastDay = day
		lastAnchor = anchor

		if !drop {
			kept = append(kept, ev)
		}
	}

	cleaned := regroupByDay(kept, loc)

	if len(issues) > 0 {
		appLog.Warn("validate: issues found and fixed", "count", len(issues))
		for _, issue := range issues {
			appLog.Warn("validate: " + issue)
		}
	} else {
		appLog.Info("validate: no issues found")
	}
	return cleaned, issues
}

// regroupByDay produces the canonical order: ascending days, all-day
// events before timed ones within a day, each bucket sorted by
// (begin, summary) for deterministic ties.
func regroupByDay(events []model.Event, loc *time.Location) []model.Event {
	byDay := make(map[time.Time][]model.Event)
	var days []time.Time
	for _, ev := range events {
		day := ev.Begin.DayStart(loc)
		if _, ok := byDay[day]; !ok {
			days = append(days, day)
		}
		byDay[day] = append(byDay[day], ev)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]model.Event, 0, len(events))
	for _, day := range days {
		var allDay, timed []model.Event
		for _, ev := range byDay[day] {
			if ev.AllDay {
				allDay = append(allDay, ev)
			} else {
				timed = append(timed, ev)
			}
		}
		sortBucket(allDay, loc)
		sortBucket(timed, loc)
		out = append(out, allDay...)
		out = append(out, timed...)
	}
	return out
}

func sortBucket(events []model.Event, loc *time.Location) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].Begin.SortAnchor(loc), events[j].Begin.SortAnchor(loc)
		if !a.Equal(b) {
			return a.Before(b)
		}
		return events[i].Summary < events[j].Summary
	})
}

func hasCancellationText(s string) bool {
	return strings.Contains(strings.ToLower(s), "cancel")
}
