package agenda

import (
	"errors"
	"fmt"

	appLog "github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/log"
	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/model"
)

const (
	defaultMaxItemsPerPage = 6
	distributeHardCap      = 1000
)

// Distribute packs events and tasks into ordered, capacity-bounded pages
// with page targets computed upfront rather than by greedy filling, so 10
// items at capacity 8 split 5+5 instead of 8+2, and 20 items at capacity
// 8 split 7+7+6 instead of 8+8+4.
//
// Properties, re-derived over the output before returning:
//
//   - conservation: pages reproduce the input events and tasks in order
//   - capacity: no page exceeds maxItems, except the single-page shortcut
//     when everything fits
//   - fill order: events first, then tasks; short non-final pages take
//     one extra available item
//
// A violation is logged at error level but the best-effort result is
// still returned.
func Distribute(events []model.Event, tasks []string, maxItems int) []model.Page {
	if maxItems <= 0 {
		maxItems = defaultMaxItemsPerPage
	}

	totalEvents, totalTasks := len(events), len(tasks)
	total := totalEvents + totalTasks

	if total > distributeHardCap {
		appLog.Error("distribute: refusing oversized input", errors.New("item cap exceeded"), "total", total)
		return []model.Page{{}}
	}
	if total == 0 {
		// Structural emptiness is not an error: a single empty page.
		return []model.Page{{}}
	}

	// Everything-fits shortcut: one page regardless of balance.
	if total <= maxItems {
		pages := []model.Page{{Events: events, Tasks: tasks}}
		checkDistribution(pages, totalEvents, totalTasks, maxItems)
		return pages
	}

	// Upfront targets: ceil(total / maxItems) pages, total/p each, the
	// first total%p pages taking one extra.
	pageCount := (total + maxItems - 1) / maxItems
	base := total / pageCount
	remainder := total % pageCount

	targets := make([]int, pageCount)
	for i := range targets {
		targets[i] = base
		if i < remainder {
			targets[i]++
		}
	}

	// Floor of min(4, total/p) per page when splitting.
	floor := total / pageCount
	if floor > 4 {
		floor = 4
	}
	for i, t := range targets {
		if t < floor {
			targets[i] = floor
		}
	}

	appLog.Info("distribute: targets computed", "total", total, "pages", pageCount, "targets", fmt.Sprint(targets))

	pages := make([]model.Page, 0, pageCount)
	eventsLeft, tasksLeft := events, tasks

	for idx, target := range targets {
		var page model.Page

		for len(eventsLeft) > 0 && page.Total() < target {
			page.Events = append(page.Events, eventsLeft[0])
			eventsLeft = eventsLeft[1:]
		}
		for len(tasksLeft) > 0 && page.Total() < target {
			page.Tasks = append(page.Tasks, tasksLeft[0])
			tasksLeft = tasksLeft[1:]
		}

		// A short non-final page takes one extra available item.
		if page.Total() < target && idx < len(targets)-1 && page.Total() < maxItems {
			if len(eventsLeft) > 0 {
				page.Events = append(page.Events, eventsLeft[0])
				eventsLeft = eventsLeft[1:]
			} else if len(tasksLeft) > 0 {
				page.Tasks = append(page.Tasks, tasksLeft[0])
				tasksLeft = tasksLeft[1:]
			}
		}

		pages = append(pages, page)
	}

	// Rounding leftovers go onto the last page if it has room, otherwise
	// onto a new trailing page.
	if len(eventsLeft) > 0 || len(tasksLeft) > 0 {
		appLog.Warn("distribute: leftover items after targeted fill",
			"events", len(eventsLeft), "tasks", len(tasksLeft))
		last := len(pages) - 1
		for len(eventsLeft) > 0 && pages[last].Total() < maxItems {
			pages[last].Events = append(pages[last].Events, eventsLeft[0])
			eventsLeft = eventsLeft[1:]
		}
		for len(tasksLeft) > 0 && pages[last].Total() < maxItems {
			pages[last].Tasks = append(pages[last].Tasks, tasksLeft[0])
			tasksLeft = tasksLeft[1:]
		}
		if len(eventsLeft) > 0 || len(tasksLeft) > 0 {
			pages = append(pages, model.Page{Events: eventsLeft, Tasks: tasksLeft})
		}
	}

	checkDistribution(pages, totalEvents, totalTasks, maxItems)
	return pages
}

// checkDistribution re-derives the conservation, capacity, and balance
// properties over a finished distribution. Failures are logged, never
// returned; distribution is advisory-grade.
func checkDistribution(pages []model.Page, totalEvents, totalTasks, maxItems int) bool {
	gotEvents, gotTasks := 0, 0
	for _, p := range pages {
		gotEvents += len(p.Events)
		gotTasks += len(p.Tasks)
	}
	if gotEvents != totalEvents || gotTasks != totalTasks {
		appLog.Error("distribute: conservation violated", errors.New("item counts differ"),
			"want_events", totalEvents, "got_events", gotEvents,
			"want_tasks", totalTasks, "got_tasks", gotTasks)
		return false
	}

	total := totalEvents + totalTasks
	if len(pages) > 1 || total > maxItems {
		for i, p := range pages {
			if p.Total() > maxItems {
				appLog.Error("distribute: capacity violated", errors.New("page over capacity"),
					"page", i+1, "items", p.Total(), "max", maxItems)
				return false
			}
		}
	}

	if len(pages) > 1 && total > maxItems {
		minTotal, maxTotal := pages[0].Total(), pages[0].Total()
		for _, p := range pages[1:] {
			if p.Total() < minTotal {
				minTotal = p.Total()
			}
			if p.Total() > maxTotal {
				maxTotal = p.Total()
			}
		}
		if maxTotal-minTotal > 3 && total > len(pages)*4 {
			appLog.Error("distribute: balance violated", errors.New("page spread too wide"),
				"min", minTotal, "max", maxTotal)
			return false
		}
	}

	return true
}
