package agenda

import (
	"testing"
	"time"

	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/model"
)

func buildInput(t *testing.T, events []model.Event) BuildInput {
	t.Helper()
	loc := testLoc(t)
	return BuildInput{
		// Tuesday 2026-03-10 08:00 SGT.
		Now:               time.Date(2026, 3, 10, 8, 0, 0, 0, loc),
		Location:          loc,
		Events:            events,
		ChecklistToday:    []string{"Top 3 Things", "Journal"},
		ChecklistTomorrow: []string{"Top 3 Things"},
		MaxItemsPerPage:   6,
		Epigraph:          Epigraph{Quote: "Begin.", Author: "Someone"},
		TomorrowEpigraph:  Epigraph{Quote: "Again.", Author: "Someone"},
		WeatherToday:      []WeatherBlock{{Location: "Home", Narrative: "Clear sky, 24-31°C."}},
		WeatherTomorrow:   []WeatherBlock{{Location: "Home", Narrative: "Overcast, 24-29°C."}},
	}
}

func TestBuildDocument_EmptyStillHasFourPages(t *testing.T) {
	in := buildInput(t, nil)
	in.ChecklistToday = nil
	in.ChecklistTomorrow = nil

	pages := BuildDocument(in)
	// One content page and one notes page per day.
	if len(pages) != 4 {
		t.Fatalf("got %d pages, want 4", len(pages))
	}
	for i, p := range pages {
		if p.PageNumber != i+1 || p.TotalPages != 4 {
			t.Errorf("page %d numbering: %d/%d", i, p.PageNumber, p.TotalPages)
		}
	}
	if pages[0].Day != "today" || pages[2].Day != "tomorrow" {
		t.Errorf("day ordering wrong: %q, %q", pages[0].Day, pages[2].Day)
	}
	if !pages[1].IsNotesPage || !pages[3].IsNotesPage {
		t.Error("notes pages missing")
	}
	if pages[1].NotesLines != notesPageLines {
		t.Errorf("notes lines %d", pages[1].NotesLines)
	}
	if len(pages[0].Weather) != 1 || pages[0].Weather[0].Location != "Home" {
		t.Error("weather missing from first today page")
	}
	if pages[0].Epigraph == nil || pages[0].Epigraph.Quote != "Begin." {
		t.Error("epigraph missing from first today page")
	}
}

func TestBuildDocument_SplitsDays(t *testing.T) {
	loc := testLoc(t)
	in := buildInput(t, []model.Event{
		allDayEvent("Today holiday", 10),
		timedEvent(loc, "Today meeting", 10, 14),
		timedEvent(loc, "Tomorrow gym", 11, 7),
		timedEvent(loc, "Next week", 17, 9),
	})

	pages := BuildDocument(in)
	if len(pages) != 4 {
		t.Fatalf("got %d pages, want 4", len(pages))
	}

	today := pages[0]
	if len(today.Events) != 2 {
		t.Fatalf("today has %d events, want 2", len(today.Events))
	}
	if today.Events[0].Summary != "Today holiday" {
		t.Errorf("all-day should lead, got %q", today.Events[0].Summary)
	}
	if today.Events[1].Icon == "" || today.Events[1].DisplayTime == "" {
		t.Error("events not formatted")
	}

	tomorrow := pages[2]
	if len(tomorrow.Events) != 1 || tomorrow.Events[0].Summary != "Tomorrow gym" {
		t.Fatalf("tomorrow events wrong: %+v", tomorrow.Events)
	}

	for _, p := range pages {
		for _, ev := range p.Events {
			if ev.Summary == "Next week" {
				t.Error("out-of-horizon event leaked onto a page")
			}
		}
	}
}

func TestBuildDocument_SpanningEventOnBothDays(t *testing.T) {
	loc := testLoc(t)
	span := model.Event{
		Summary: "Overnight shift",
		Begin:   model.Instant(time.Date(2026, 3, 10, 22, 0, 0, 0, loc)),
		End:     model.Instant(time.Date(2026, 3, 11, 6, 0, 0, 0, loc)),
	}

	pages := BuildDocument(buildInput(t, []model.Event{span}))
	if len(pages[0].Events) != 1 {
		t.Error("spanning event missing from today")
	}
	if len(pages[2].Events) != 1 {
		t.Error("spanning event missing from tomorrow")
	}
}

func TestBuildDocument_OverflowFlags(t *testing.T) {
	loc := testLoc(t)
	in := buildInput(t, makeEvents(loc, 8))
	in.ChecklistToday = makeTasks(4)

	pages := BuildDocument(in)
	// Today: 12 items at capacity 6 split over two pages, then notes;
	// tomorrow: one page, then notes.
	if len(pages) != 5 {
		t.Fatalf("got %d pages, want 5", len(pages))
	}

	first, second := pages[0], pages[1]
	if len(first.Events) != 6 || len(first.Tasks) != 0 {
		t.Fatalf("first page: %d events / %d tasks", len(first.Events), len(first.Tasks))
	}
	if first.IsOverflowEvents || !first.ShowEventsHeader {
		t.Error("first page must carry the events header, not a continuation")
	}
	if len(second.Events) != 2 || len(second.Tasks) != 4 {
		t.Fatalf("second page: %d events / %d tasks", len(second.Events), len(second.Tasks))
	}
	if !second.IsOverflowEvents || second.EventsContinuation == "" {
		t.Error("second page should be marked as events continuation")
	}
	if second.IsOverflowTasks {
		t.Error("tasks appear on one page only, no continuation expected")
	}
	if !second.ShowTasksHeader {
		t.Error("second page should show the tasks header")
	}
	if second.Weather != nil || second.Epigraph != nil {
		t.Error("weather and epigraph belong to the first page of a day only")
	}
}

func TestBasePageNaming(t *testing.T) {
	loc := testLoc(t)
	tests := []struct {
		now         time.Time
		fileName    string
		visibleName string
	}{
		{time.Date(2026, 3, 10, 8, 0, 0, 0, loc), "NMS_T_2026_03_10", "NMS_10_Mar_26"},
		{time.Date(2026, 3, 12, 8, 0, 0, 0, loc), "NMS_R_2026_03_12", "NMS_12_Mar_26"},
		{time.Date(2026, 3, 14, 8, 0, 0, 0, loc), "NMS_Sa_2026_03_14", "NMS_14_Mar_26"},
		{time.Date(2026, 3, 15, 8, 0, 0, 0, loc), "NMS_Su_2026_03_15", "NMS_15_Mar_26"},
		{time.Date(2026, 3, 16, 8, 0, 0, 0, loc), "NMS_M_2026_03_16", "NMS_16_Mar_26"},
	}

	for _, tc := range tests {
		base := basePage(tc.now)
		if base.FileName != tc.fileName {
			t.Errorf("FileName = %q, want %q", base.FileName, tc.fileName)
		}
		if base.VisibleName != tc.visibleName {
			t.Errorf("VisibleName = %q, want %q", base.VisibleName, tc.visibleName)
		}
	}

	base := basePage(time.Date(2026, 3, 10, 8, 0, 0, 0, loc))
	if base.TodayHeader != "NMS: Tuesday, 10 March 2026" {
		t.Errorf("TodayHeader = %q", base.TodayHeader)
	}
	if base.TomorrowHeader != "AMP: Wednesday, 11 March 2026" {
		t.Errorf("TomorrowHeader = %q", base.TomorrowHeader)
	}
}
