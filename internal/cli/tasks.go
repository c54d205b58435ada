package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"taskdeck/internal/task"
	"taskdeck/internal/views"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending tasks ordered by due date",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			repo := a.repo
			if err := repo.Refresh(cmd.Context()); err != nil {
				return err
			}
			tasks := repo.Tasks()
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No pending tasks.")
				return nil
			}
			now := time.Now()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRIORITY\tDUE\tLEFT\tPROGRESS\tTEXT")
			for _, t := range tasks {
				due, left := "-", "-"
				if t.DueDate != nil {
					due = t.DueDate.In(time.Local).Format(task.DateTimeLayout)
					days, _ := views.DaysRemaining(t, now)
					left = fmt.Sprintf("%dd", days)
				}
				progress := "-"
				if pct, ok := views.Progress(t); ok {
					done, total := views.SubtaskCounts(t)
					progress = fmt.Sprintf("%d/%d %d%%", done, total, pct)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Priority, due, left, progress, t.Text)
			}
			return w.Flush()
		}),
	}
}

func newAddCmd(opts *options) *cobra.Command {
	var title, priority, due string
	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			p, err := task.ParsePriority(priority)
			if err != nil {
				return err
			}
			dueDate, err := task.ParseDue(due, time.Local)
			if err != nil {
				return err
			}
			id, err := a.repo.Add(cmd.Context(), task.Fields{
				Title:    title,
				Text:     strings.Join(args, " "),
				Priority: p,
				DueDate:  dueDate,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", id)
			return nil
		}),
	}
	cmd.Flags().StringVar(&title, "title", "", "Optional title")
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "low, medium or high")
	cmd.Flags().StringVar(&due, "due", "", "Due date, YYYY-MM-DD or \"YYYY-MM-DD HH:MM\"")
	return cmd
}

func newDoneCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "done [task-id]",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.repo.Complete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed %s\n", args[0])
			return nil
		}),
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "delete [task-id]",
		Aliases: []string{"rm"},
		Short:   "Delete a task and its subtasks",
		Args:    cobra.ExactArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.repo.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		}),
	}
}

func newCalendarCmd(opts *options) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print a month with the pending tasks due in it",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			start := time.Now()
			if month != "" {
				var err error
				start, err = time.ParseInLocation("2006-01", month, time.Local)
				if err != nil {
					return fmt.Errorf("month: want YYYY-MM, got %q", month)
				}
			}
			weekStart, err := a.cfg.FirstWeekday()
			if err != nil {
				return err
			}
			repo := a.repo
			if err := repo.Refresh(cmd.Context()); err != nil {
				return err
			}
			tasks := repo.Tasks()
			out := cmd.OutOrStdout()

			grid := views.CalendarGrid(start, weekStart)
			counts := views.CountByDay(tasks, grid)
			fmt.Fprintln(out, start.Format("January 2006"))
			for i := 0; i < 7; i++ {
				fmt.Fprintf(out, " %-4s", grid[i].Weekday().String()[:3])
			}
			fmt.Fprintln(out)
			for i, d := range grid {
				mark := " "
				if counts[i] > 0 {
					mark = "*"
				}
				if d.Month() != start.Month() {
					fmt.Fprint(out, "     ")
				} else {
					fmt.Fprintf(out, "  %2d%s", d.Day(), mark)
				}
				if i%7 == 6 {
					fmt.Fprintln(out)
				}
			}

			for _, bucket := range views.GroupByDay(tasks, time.Local) {
				if bucket.Day.Year() != start.Year() || bucket.Day.Month() != start.Month() {
					continue
				}
				fmt.Fprintf(out, "\n%s\n", bucket.Day.Format("Mon Jan 2"))
				for _, t := range bucket.Tasks {
					fmt.Fprintf(out, "  %-6s %s %s\n", t.Priority, t.DueDate.In(time.Local).Format("3:04 PM"), t.Text)
				}
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&month, "month", "", "Month to show, YYYY-MM (default: current)")
	return cmd
}
