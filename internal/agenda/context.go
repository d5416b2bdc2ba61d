package agenda

import (
	"fmt"
	"time"

	appLog "github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/log"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/model"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/timeutil"
)

// Epigraph is the quote block placed on the first page of a day.
type Epigraph struct {
	Quote  string
	Author string
}

// WeatherBlock is one location's narrative forecast, ready to render.
type WeatherBlock struct {
	Location  string
	Narrative string
}

// PageContext is the renderer-facing record for one page.
type PageContext struct {
	Events []model.Event
	Tasks  []string

	PageNumber int
	TotalPages int

	// Day is "today" or "tomorrow".
	Day string

	TodayHeader    string
	TomorrowHeader string
	LastUpdated    string
	VisibleName    string
	FileName       string

	Epigraph *Epigraph
	Weather  []WeatherBlock

	HasTodayEvents    bool
	HasTomorrowEvents bool
	HasTodayTasks     bool
	HasTomorrowTasks  bool

	// Checklists are the full configured task lists for both days,
	// independent of what landed on this page.
	ChecklistToday    []string
	ChecklistTomorrow []string

	IsOverflowEvents   bool
	IsOverflowTasks    bool
	ShowEventsHeader   bool
	ShowTasksHeader    bool
	EventsContinuation string
	TasksContinuation  string

	IsNotesPage bool
	NotesLines  int
}

// BuildInput carries everything the builder needs; the builder itself
// performs no environment access.
type BuildInput struct {
	Now      time.Time
	Location *time.Location

	// Events must already be validated (canonical day order).
	Events []model.Event

	ChecklistToday    []string
	ChecklistTomorrow []string
	MaxItemsPerPage   int

	Epigraph         Epigraph
	TomorrowEpigraph Epigraph

	WeatherToday    []WeatherBlock
	WeatherTomorrow []WeatherBlock
}

const notesPageLines = 12

// BuildDocument splits validated events into the two horizon days,
// formats and distributes each day with its checklist, and assembles the
// ordered page contexts: today pages, a today notes page, tomorrow pages,
// a tomorrow notes page. A day with no content still gets one page so
// weather and epigraph have somewhere to live.
func BuildDocument(in BuildInput) []PageContext {
	loc := in.Location
	if loc == nil {
		loc = time.Local
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(loc)

	todayEvents, tomorrowEvents := splitDays(in.Events, now, loc)

	base := basePage(now)
	base.HasTodayEvents = len(todayEvents) > 0
	base.HasTomorrowEvents = len(tomorrowEvents) > 0
	base.HasTodayTasks = len(in.ChecklistToday) > 0
	base.HasTomorrowTasks = len(in.ChecklistTomorrow) > 0
	base.ChecklistToday = in.ChecklistToday
	base.ChecklistTomorrow = in.ChecklistTomorrow

	var contexts []PageContext
	contexts = append(contexts, buildDayPages(
		"today", base, todayEvents, in.ChecklistToday, in.MaxItemsPerPage, in.Epigraph, in.WeatherToday)...)
	contexts = append(contexts, notesPage("today", base))
	contexts = append(contexts, buildDayPages(
		"tomorrow", base, tomorrowEvents, in.ChecklistTomorrow, in.MaxItemsPerPage, in.TomorrowEpigraph, in.WeatherTomorrow)...)
	contexts = append(contexts, notesPage("tomorrow", base))

	for i := range contexts {
		contexts[i].PageNumber = i + 1
		contexts[i].TotalPages = len(contexts)
	}

	appLog.Info("context: document assembled",
		"pages", len(contexts),
		"today_events", len(todayEvents),
		"tomorrow_events", len(tomorrowEvents),
	)
	return contexts
}

// splitDays buckets events into the two horizon days. All-day events
// belong to the day they start on; timed events belong to any day their
// interval overlaps.
func splitDays(events []model.Event, now time.Time, loc *time.Location) (today, tomorrow []model.Event) {
	todayStart := timeutil.FloorDay(now, loc)
	tomorrowStart := todayStart.AddDate(0, 0, 1)
	tomorrowEnd := todayStart.AddDate(0, 0, 2)

	for _, ev := range events {
		if eventOnDay(ev, todayStart, tomorrowStart, loc) {
			today = append(today, ev)
		}
		if eventOnDay(ev, tomorrowStart, tomorrowEnd, loc) {
			tomorrow = append(tomorrow, ev)
		}
	}
	return today, tomorrow
}

func eventOnDay(ev model.Event, dayStart, dayEnd time.Time, loc *time.Location) bool {
	if ev.Begin.IsZero() || ev.End.IsZero() {
		return false
	}
	if ev.AllDay {
		return ev.Begin.DayStart(loc).Equal(dayStart)
	}
	return ev.Begin.Time.Before(dayEnd) && ev.End.Time.After(dayStart)
}

func buildDayPages(day string, base PageContext, events []model.Event, tasks []string, maxItems int, epigraph Epigraph, weather []WeatherBlock) []PageContext {
	formatted := FormatEvents(events)
	pages := Distribute(formatted, tasks, maxItems)

	pagesWithTasks := 0
	for _, p := range pages {
		if len(p.Tasks) > 0 {
			pagesWithTasks++
		}
	}

	out := make([]PageContext, 0, len(pages))
	for idx, page := range pages {
		ctx := base
		ctx.Day = day
		ctx.Events = page.Events
		ctx.Tasks = page.Tasks

		if idx == 0 {
			ctx.Weather = weather
			if epigraph.Quote != "" {
				ep := epigraph
				ctx.Epigraph = &ep
			}
		}

		if idx > 0 && len(page.Events) > 0 && len(formatted) > maxItems {
			ctx.IsOverflowEvents = true
			ctx.EventsContinuation = "Events continued from previous page"
		}
		if idx > 0 && len(page.Tasks) > 0 && pagesWithTasks > 1 {
			ctx.IsOverflowTasks = true
			ctx.TasksContinuation = "Tasks continued from previous page"
		}

		ctx.ShowEventsHeader = len(page.Events) > 0 && !ctx.IsOverflowEvents
		ctx.ShowTasksHeader = len(page.Tasks) > 0 && !ctx.IsOverflowTasks

		out = append(out, ctx)
	}
	return out
}

func notesPage(day string, base PageContext) PageContext {
	ctx := base
	ctx.Day = day
	ctx.IsNotesPage = true
	ctx.NotesLines = notesPageLines
	return ctx
}

// basePage computes the header, filename, and timestamp strings shared by
// every page of one document.
func basePage(now time.Time) PageContext {
	tomorrow := now.AddDate(0, 0, 1)

	// Weekday initials, Monday first: M T W R F Sa Su.
	initials := []string{"M", "T", "W", "R", "F", "Sa", "Su"}
	initial := initials[(int(now.Weekday())+6)%7]

	return PageContext{
		TodayHeader:    "NMS: " + now.Format("Monday, 2 January 2006"),
		TomorrowHeader: "AMP: " + tomorrow.Format("Monday, 2 January 2006"),
		LastUpdated:    now.Format("15:04 MST, Monday, January 2"),
		FileName:       fmt.Sprintf("NMS_%s_%s", initial, now.Format("2006_01_02")),
		VisibleName:    fmt.Sprintf("NMS_%d_%s_%s", now.Day(), now.Format("Jan"), now.Format("06")),
	}
}
