package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskdeck/internal/task"
)

func at(y int, m time.Month, d, h, mi int) *time.Time {
	t := time.Date(y, m, d, h, mi, 0, 0, time.UTC)
	return &t
}

func TestTasksOnDayComparesCalendarDays(t *testing.T) {
	tasks := []task.Task{
		{ID: "morning", DueDate: at(2026, 5, 4, 0, 0)},
		{ID: "undated"},
		{ID: "evening", DueDate: at(2026, 5, 4, 23, 59)},
		{ID: "next", DueDate: at(2026, 5, 5, 0, 0)},
	}
	got := TasksOnDay(tasks, time.Date(2026, 5, 4, 15, 0, 0, 0, time.UTC))
	require.Len(t, got, 2)
	require.Equal(t, "morning", got[0].ID)
	require.Equal(t, "evening", got[1].ID)
}

func TestTasksOnDayUsesLocationOfDay(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	tasks := []task.Task{{ID: "late utc", DueDate: at(2026, 5, 4, 20, 0)}}
	require.Len(t, TasksOnDay(tasks, time.Date(2026, 5, 5, 0, 0, 0, 0, tokyo)), 1)
	require.Empty(t, TasksOnDay(tasks, time.Date(2026, 5, 4, 0, 0, 0, 0, tokyo)))
}

func TestCalendarGridCoversWholeWeeks(t *testing.T) {
	// May 2026 starts on a Friday and ends on a Sunday.
	grid := CalendarGrid(time.Date(2026, 5, 17, 10, 0, 0, 0, time.UTC), time.Sunday)
	require.Zero(t, len(grid)%7)
	require.Equal(t, time.Date(2026, 4, 26, 0, 0, 0, 0, time.UTC), grid[0])
	require.Equal(t, time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC), grid[len(grid)-1])
	require.Len(t, grid, 42)
	for i, d := range grid {
		require.Equal(t, time.Weekday(i%7), d.Weekday())
	}

	grid = CalendarGrid(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), time.Monday)
	require.Equal(t, time.Date(2026, 4, 27, 0, 0, 0, 0, time.UTC), grid[0])
	require.Equal(t, time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC), grid[len(grid)-1])
	require.Len(t, grid, 35)
}

func TestCalendarGridExactFourWeeks(t *testing.T) {
	// February 2026 runs Sunday 1st to Saturday 28th.
	grid := CalendarGrid(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), time.Sunday)
	require.Len(t, grid, 28)
	require.Equal(t, 1, grid[0].Day())
}

func TestProgress(t *testing.T) {
	tk := task.Task{Subtasks: []task.Subtask{
		{ID: "1", Completed: true},
		{ID: "2"},
		{ID: "3", Completed: true},
		{ID: "4"},
	}}
	p, ok := Progress(tk)
	require.True(t, ok)
	require.Equal(t, 50, p)

	_, ok = Progress(task.Task{})
	require.False(t, ok)

	p, _ = Progress(task.Task{Subtasks: []task.Subtask{{Completed: true}, {}, {}}})
	require.Equal(t, 33, p)
	p, _ = Progress(task.Task{Subtasks: []task.Subtask{{Completed: true}, {Completed: true}, {}}})
	require.Equal(t, 67, p)
}

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	d, ok := DaysRemaining(task.Task{DueDate: at(2026, 5, 5, 13, 0)}, now)
	require.True(t, ok)
	require.Equal(t, 2, d)

	d, _ = DaysRemaining(task.Task{DueDate: at(2026, 5, 5, 12, 0)}, now)
	require.Equal(t, 1, d)

	d, _ = DaysRemaining(task.Task{DueDate: at(2026, 5, 4, 12, 0)}, now)
	require.Equal(t, 0, d)

	d, _ = DaysRemaining(task.Task{DueDate: at(2026, 5, 2, 12, 0)}, now)
	require.Equal(t, -2, d)

	_, ok = DaysRemaining(task.Task{}, now)
	require.False(t, ok)
}

func TestUrgent(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	require.True(t, Urgent(task.Task{DueDate: at(2026, 5, 7, 12, 0)}, now))
	require.False(t, Urgent(task.Task{DueDate: at(2026, 5, 7, 13, 0)}, now))
	require.True(t, Urgent(task.Task{DueDate: at(2026, 5, 1, 9, 0)}, now))
	require.False(t, Urgent(task.Task{DueDate: at(2026, 5, 5, 9, 0), Completed: true}, now))
	require.False(t, Urgent(task.Task{}, now))
}

func TestGroupByDay(t *testing.T) {
	tasks := []task.Task{
		{ID: "b", DueDate: at(2026, 5, 9, 8, 0)},
		{ID: "a", DueDate: at(2026, 5, 2, 8, 0)},
		{ID: "none"},
		{ID: "c", DueDate: at(2026, 5, 9, 18, 0)},
	}
	buckets := GroupByDay(tasks, time.UTC)
	require.Len(t, buckets, 2)
	require.Equal(t, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), buckets[0].Day)
	require.Equal(t, "a", buckets[0].Tasks[0].ID)
	require.Len(t, buckets[1].Tasks, 2)
	require.Equal(t, "b", buckets[1].Tasks[0].ID)
	require.Equal(t, "c", buckets[1].Tasks[1].ID)
}

func TestGroupByPriorityAndCounts(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Priority: task.PriorityHigh, DueDate: at(2026, 5, 1, 9, 0)},
		{ID: "2", Priority: task.PriorityLow},
		{ID: "3", Priority: task.PriorityHigh, DueDate: at(2026, 5, 1, 10, 0)},
	}
	groups := GroupByPriority(tasks)
	require.Len(t, groups[task.PriorityHigh], 2)
	require.Len(t, groups[task.PriorityLow], 1)
	require.Empty(t, groups[task.PriorityMedium])

	days := []time.Time{
		time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	require.Equal(t, []int{0, 2}, CountByDay(tasks, days))
}
