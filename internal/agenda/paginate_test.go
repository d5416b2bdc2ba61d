package agenda

import (
	"fmt"
	"testing"
	"time"

	"github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/model"
)

func makeEvents(loc *time.Location, n int) []model.Event {
	out := make([]model.Event, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, timedEvent(loc, fmt.Sprintf("event-%02d", i), 10, 6+i%16))
	}
	return out
}

func makeTasks(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("task-%02d", i))
	}
	return out
}

func pageTotals(pages []model.Page) []int {
	out := make([]int, len(pages))
	for i, p := range pages {
		out[i] = p.Total()
	}
	return out
}

func TestDistribute_Empty(t *testing.T) {
	pages := Distribute(nil, nil, 6)
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want exactly one empty page", len(pages))
	}
	if pages[0].Total() != 0 {
		t.Errorf("empty input produced %d items", pages[0].Total())
	}
}

func TestDistribute_SinglePageShortcut(t *testing.T) {
	loc := testLoc(t)
	pages := Distribute(makeEvents(loc, 3), makeTasks(3), 6)
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if len(pages[0].Events) != 3 || len(pages[0].Tasks) != 3 {
		t.Errorf("got %d events / %d tasks", len(pages[0].Events), len(pages[0].Tasks))
	}
}

func TestDistribute_BalancedTargets(t *testing.T) {
	loc := testLoc(t)
	tests := []struct {
		name     string
		events   int
		tasks    int
		maxItems int
		want     []int
	}{
		{"ten at eight splits five-five", 10, 0, 8, []int{5, 5}},
		{"twenty at eight splits seven-seven-six", 14, 6, 8, []int{7, 7, 6}},
		{"seven at six splits four-three", 7, 0, 6, []int{4, 3}},
		{"events then tasks overflow", 6, 4, 6, []int{5, 5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pages := Distribute(makeEvents(loc, tc.events), makeTasks(tc.tasks), tc.maxItems)
			got := pageTotals(pages)
			if len(got) != len(tc.want) {
				t.Fatalf("got totals %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got totals %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestDistribute_EventsBeforeTasks(t *testing.T) {
	loc := testLoc(t)
	pages := Distribute(makeEvents(loc, 6), makeTasks(4), 6)
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if len(pages[0].Events) != 5 || len(pages[0].Tasks) != 0 {
		t.Errorf("page 1: got %d events / %d tasks, want 5 / 0",
			len(pages[0].Events), len(pages[0].Tasks))
	}
	if len(pages[1].Events) != 1 || len(pages[1].Tasks) != 4 {
		t.Errorf("page 2: got %d events / %d tasks, want 1 / 4",
			len(pages[1].Events), len(pages[1].Tasks))
	}
}

func TestDistribute_Properties(t *testing.T) {
	loc := testLoc(t)
	for events := 0; events <= 25; events++ {
		for tasks := 0; tasks <= 8; tasks += 2 {
			for _, maxItems := range []int{4, 6, 8} {
				name := fmt.Sprintf("e%d_t%d_m%d", events, tasks, maxItems)
				t.Run(name, func(t *testing.T) {
					in := makeEvents(loc, events)
					pages := Distribute(in, makeTasks(tasks), maxItems)
					total := events + tasks

					if len(pages) == 0 {
						t.Fatal("no pages returned")
					}

					// Conservation, including order.
					var gotEvents []model.Event
					var gotTasks []string
					for _, p := range pages {
						gotEvents = append(gotEvents, p.Events...)
						gotTasks = append(gotTasks, p.Tasks...)
					}
					if len(gotEvents) != events || len(gotTasks) != tasks {
						t.Fatalf("conservation: got %d/%d, want %d/%d",
							len(gotEvents), len(gotTasks), events, tasks)
					}
					for i := range gotEvents {
						if gotEvents[i].Summary != in[i].Summary {
							t.Fatalf("event order changed at %d", i)
						}
					}

					// Capacity, except the single-page shortcut.
					if total > maxItems {
						for i, p := range pages {
							if p.Total() > maxItems {
								t.Errorf("page %d over capacity: %d > %d", i+1, p.Total(), maxItems)
							}
						}
					}

					// Balance: spread at most 3 on loaded multi-page splits.
					if len(pages) > 1 && total > len(pages)*4 {
						totals := pageTotals(pages)
						min, max := totals[0], totals[0]
						for _, n := range totals[1:] {
							if n < min {
								min = n
							}
							if n > max {
								max = n
							}
						}
						if max-min > 3 {
							t.Errorf("spread %d over totals %v", max-min, totals)
						}
					}
				})
			}
		}
	}
}

func TestDistribute_DefaultCapacity(t *testing.T) {
	loc := testLoc(t)
	pages := Distribute(makeEvents(loc, 7), nil, 0)
	for i, p := range pages {
		if p.Total() > defaultMaxItemsPerPage {
			t.Errorf("page %d over default capacity: %d", i+1, p.Total())
		}
	}
}

func TestDistribute_OversizedInput(t *testing.T) {
	pages := Distribute(nil, makeTasks(distributeHardCap+1), 6)
	if len(pages) != 1 || pages[0].Total() != 0 {
		t.Fatalf("oversized input should yield one empty page, got %v", pageTotals(pages))
	}
}
