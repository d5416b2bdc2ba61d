package agenda

import (
	"strings"

	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/model"
)

// iconRules map summary keywords to a display category glyph. Order
// matters: the first matching rule wins, and the last entry is the
// catch-all planner glyph.
var iconRules = []struct {
	Icon     string
	Keywords []string
}{
	{"👥", []string{"sync", "meeting", "call", "catch-up", "zoom", "teams", "conference", "webinar", "appt", "appointment"}},
	{"✈️", []string{"flight", "airport", "depart", "arrival", "boarding", "travel", "train", "bus", "transit", "commute"}},
	{"🍴", []string{"lunch", "dinner", "breakfast", "brunch", "supper", "meal", "restaurant", "cafe", "coffee", "food"}},
	{"💪", []string{"gym", "workout", "exercise", "training", "swim", "yoga", "pilates", "boxing", "lift"}},
	{"⚕️", []string{"doctor", "dentist", "clinic", "hospital", "checkup", "therapy", "medical", "vaccine", "physio"}},
	{"🎂", []string{"birthday", "bday", "anniversary", "cake"}},
	{"✝️", []string{"mass", "church", "prayer", "bible", "worship", "choir"}},
	{"🎉", []string{"party", "celebration", "festival", "gathering", "ceremony", "wedding", "reunion", "farewell"}},
	{"🏖️", []string{"vacation", "holiday", "beach", "trip", "getaway", "resort"}},
	{"🏠", []string{"home", "house", "family", "chores", "cleaning", "maintenance"}},
	{"🛒", []string{"shopping", "groceries", "market", "supermarket", "mall"}},
	{"🧑‍💻", []string{"work", "project", "deadline", "deploy", "release", "review", "sprint", "office", "standup", "retro", "1:1", "townhall"}},
	{"📚", []string{"study", "class", "lecture", "exam", "school", "course", "assignment", "reading", "revision"}},
	{"🎬", []string{"movie", "film", "cinema", "theatre", "screening"}},
	{"🎵", []string{"concert", "music", "gig", "recital", "performance", "orchestra", "opera"}},
	{"⚽", []string{"soccer", "tennis", "league", "golf", "basketball", "football", "marathon"}},
	{"🚗", []string{"car", "drive", "roadtrip", "mechanic", "taxi", "uber", "grab"}},
	{"💯", []string{"interview", "job", "career", "application", "offer", "resume"}},
	{"🛏️", []string{"sleep", "nap", "rest", "bedtime", "haircut"}},
	{"🍼", []string{"baby", "feeding", "infant", "toddler", "childcare", "kid"}},
	{"🗓️", []string{"event", "reminder", "note", "todo", "task", "plan", "schedule"}},
}

const fallbackIcon = "🗓️"

// EventIcon maps summary text to its display category glyph.
func EventIcon(summary string) string {
	lower := strings.ToLower(summary)
	for _, rule := range iconRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Icon
			}
		}
	}
	return fallbackIcon
}

// DisplayTime renders the human time-range string for an event: "All day"
// for date-bounded events, "HH:mm" when the end matches the start, and
// "HH:mm-HH:mm" otherwise.
func DisplayTime(ev model.Event) string {
	if ev.AllDay {
		return "All day"
	}
	if ev.Begin.IsZero() {
		return "??:??"
	}
	start := ev.Begin.Time.Format("15:04")
	if ev.End.IsZero() || ev.End.Time.Equal(ev.Begin.Time) {
		return start
	}
	return start + "-" + ev.End.Time.Format("15:04")
}

// FormatEvents returns copies of events with Icon and DisplayTime filled
// in. The input slice is not modified; events are expected to be in the
// display timezone already.
func FormatEvents(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	for i, ev := range events {
		ev.Icon = EventIcon(ev.Summary)
		ev.DisplayTime = DisplayTime(ev)
		out[i] = ev
	}
	return out
}
