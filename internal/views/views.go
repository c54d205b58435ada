// Package views computes read-only projections of a task list: calendar
// buckets, grids and progress figures. Nothing here mutates its input.
package views

import (
	"math"
	"slices"
	"time"

	"taskdeck/internal/task"
)

// SameDay reports whether a and b fall on the same calendar day in the
// location of b.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TasksOnDay returns the tasks due on the calendar day of day, in input
// order.
func TasksOnDay(tasks []task.Task, day time.Time) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if t.DueDate != nil && SameDay(*t.DueDate, day) {
			out = append(out, t)
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CalendarGrid returns every day of the whole weeks covering the month of
// month, weeks starting on weekStart. The length is always a multiple of 7.
func CalendarGrid(month time.Time, weekStart time.Weekday) []time.Time {
	y, m, _ := month.Date()
	loc := month.Location()
	first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	last := time.Date(y, m+1, 0, 0, 0, 0, 0, loc)

	start := first.AddDate(0, 0, -int((first.Weekday()-weekStart+7)%7))
	end := last.AddDate(0, 0, int((weekStart+6-last.Weekday()+7)%7))

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Progress is the rounded percentage of completed subtasks. ok is false
// when the task has no subtasks.
func Progress(t task.Task) (percent int, ok bool) {
	done, total := SubtaskCounts(t)
	if total == 0 {
		return 0, false
	}
	return int(math.Round(100 * float64(done) / float64(total))), true
}

func SubtaskCounts(t task.Task) (done, total int) {
	for _, s := range t.Subtasks {
		if s.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}

// DaysRemaining is ceil((due - now) / 24h). Zero or less means overdue.
// ok is false for unscheduled tasks.
func DaysRemaining(t task.Task, now time.Time) (days int, ok bool) {
	if t.DueDate == nil {
		return 0, false
	}
	d := t.DueDate.Sub(now)
	return int(math.Ceil(d.Hours() / 24)), true
}

// UrgentWithinDays is the horizon inside which a pending task is urgent.
const UrgentWithinDays = 3

// Urgent reports whether a pending dated task is due within
// UrgentWithinDays, overdue tasks included.
func Urgent(t task.Task, now time.Time) bool {
	days, ok := DaysRemaining(t, now)
	return ok && !t.Completed && days <= UrgentWithinDays
}

type DayBucket struct {
	Day   time.Time
	Tasks []task.Task
}

// GroupByDay buckets dated tasks by calendar day in loc, days ascending.
// Undated tasks are skipped.
func GroupByDay(tasks []task.Task, loc *time.Location) []DayBucket {
	var buckets []DayBucket
	index := map[time.Time]int{}
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		day := startOfDay(t.DueDate.In(loc))
		i, ok := index[day]
		if !ok {
			i = len(buckets)
			index[day] = i
			buckets = append(buckets, DayBucket{Day: day})
		}
		buckets[i].Tasks = append(buckets[i].Tasks, t)
	}
	slices.SortStableFunc(buckets, func(a, b DayBucket) int { return a.Day.Compare(b.Day) })
	return buckets
}

// GroupByPriority splits tasks by priority, keeping input order within each
// group.
func GroupByPriority(tasks []task.Task) map[task.Priority][]task.Task {
	out := map[task.Priority][]task.Task{}
	for _, t := range tasks {
		out[t.Priority] = append(out[t.Priority], t)
	}
	return out
}

// CountByDay counts the tasks due on each day of days.
func CountByDay(tasks []task.Task, days []time.Time) []int {
	counts := make([]int, len(days))
	for i, d := range days {
		counts[i] = len(TasksOnDay(tasks, d))
	}
	return counts
}
