package agenda

import (
	"testing"
	"time"

	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/model"
)

func TestEventIcon(t *testing.T) {
	tests := []struct {
		summary string
		want    string
	}{
		{"Weekly team sync", "👥"},
		{"Flight to Tokyo", "✈️"},
		{"Dinner with parents", "🍴"},
		{"Gym session", "💪"},
		{"Dentist checkup", "⚕️"},
		{"Mum's birthday", "🎂"},
		{"Sunday Mass", "✝️"},
		{"Sprint review", "🧑‍💻"},
		{"GYM", "💪"},
		{"Pick up dry cleaning", "🏠"},
		{"Something entirely unmatched", "🗓️"},
		{"", "🗓️"},
	}

	for _, tc := range tests {
		t.Run(tc.summary, func(t *testing.T) {
			if got := EventIcon(tc.summary); got != tc.want {
				t.Errorf("EventIcon(%q) = %q, want %q", tc.summary, got, tc.want)
			}
		})
	}
}

func TestEventIcon_FirstRuleWins(t *testing.T) {
	// "lunch meeting" matches both the people and the food rule; the
	// earlier rule decides.
	if got := EventIcon("Lunch meeting"); got != "👥" {
		t.Errorf("got %q, want people glyph", got)
	}
}

func TestDisplayTime(t *testing.T) {
	loc := testLoc(t)
	begin := time.Date(2026, 3, 10, 9, 30, 0, 0, loc)

	tests := []struct {
		name string
		ev   model.Event
		want string
	}{
		{"all day", model.Event{AllDay: true, Begin: model.Date(2026, 3, 10)}, "All day"},
		{"no begin", model.Event{}, "??:??"},
		{
			"range",
			model.Event{Begin: model.Instant(begin), End: model.Instant(begin.Add(time.Hour))},
			"09:30-10:30",
		},
		{
			"point in time",
			model.Event{Begin: model.Instant(begin), End: model.Instant(begin)},
			"09:30",
		},
		{"no end", model.Event{Begin: model.Instant(begin)}, "09:30"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DisplayTime(tc.ev); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatEvents_DoesNotMutateInput(t *testing.T) {
	loc := testLoc(t)
	in := []model.Event{timedEvent(loc, "Gym", 10, 7)}

	out := FormatEvents(in)
	if in[0].Icon != "" || in[0].DisplayTime != "" {
		t.Error("input slice was mutated")
	}
	if out[0].Icon != "💪" {
		t.Errorf("got icon %q", out[0].Icon)
	}
	if out[0].DisplayTime != "07:00-08:00" {
		t.Errorf("got display time %q", out[0].DisplayTime)
	}
}
