package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"totwist/internal/app"
	"totwist/internal/dates"
	"totwist/internal/storage"
	"totwist/internal/task"
	"totwist/internal/view"
)

func addCmd(opts *rootOptions) *cobra.Command {
	var priority, due, description, when string
	cmd := &cobra.Command{
		Use:   "add [title...]",
		Short: "Add a task; dates in the title are detected",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.close()
			state, err := s.state(cmd.Context())
			if err != nil {
				return err
			}

			f := app.NewForm()
			f.Title = strings.Join(args, " ")
			f.Description = description
			if f.Priority, err = parsePriority(priority); err != nil {
				return err
			}
			if f.When, err = parseWhen(when); err != nil {
				return err
			}
			d, err := dates.ParseInput(due, state.Now())
			if err != nil {
				return fmt.Errorf("--due: %w", err)
			}
			if f.When == task.WhenExactDate {
				f.ExactDate = d
			} else {
				f.DueDate = d
			}

			t, err := state.Submit(f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", taskLine(t))
			return nil
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "P4", "priority P1-P4")
	cmd.Flags().StringVarP(&due, "due", "d", "", `due date, "DD/MM/YYYY HH:MM" or "15 de abril"`)
	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().StringVarP(&when, "when", "w", "today", "today, tomorrow, scheduled or exact-date")
	return cmd
}

func listCmd(opts *rootOptions) *cobra.Command {
	var route, query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the tasks of a route grouped by priority",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.close()
			state, err := s.state(cmd.Context())
			if err != nil {
				return err
			}
			if route != "" {
				r, err := view.ParseRoute(route)
				if err != nil {
					return err
				}
				state.SetRoute(r)
			}
			state.SetQuery(query)
			printGroups(cmd.OutOrStdout(), state.Route(), state.Visible())
			printLastSaved(cmd.Context(), cmd.OutOrStdout(), s.blobs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&route, "route", "r", "", "today, upcoming, all, trash or calendar (default from config)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "only tasks whose title or description contains this")
	return cmd
}

func calCmd(opts *rootOptions) *cobra.Command {
	var mode, date string
	cmd := &cobra.Command{
		Use:   "cal",
		Short: "Print the calendar with the tasks due on each day",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.close()
			state, err := s.state(cmd.Context())
			if err != nil {
				return err
			}
			m, err := view.ParseCalendarMode(mode)
			if err != nil {
				return err
			}
			state.SetRoute(view.RouteCalendar)
			state.SetCalendarMode(m)
			if date != "" {
				d, err := dates.ParseInput(date, state.Now())
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				state.SetCalendarDate(*d)
			}
			printCalendar(cmd.OutOrStdout(), m, state.CalendarDate(), state.CalendarCells())
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(view.CalendarMonth), "month, week or day")
	cmd.Flags().StringVar(&date, "date", "", "day to show (default today)")
	return cmd
}

func purgeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove trashed tasks older than 30 days",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.close()
			repo := task.Load(cmd.Context(), s.blobs, task.WithLogger(s.logger))
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d tasks\n", repo.PurgeExpiredTrash())
			return nil
		},
	}
}

func printGroups(w io.Writer, route view.Route, groups []view.Group) {
	fmt.Fprintf(w, "%s (%d)\n", route.Label(), view.Count(groups))
	for _, g := range groups {
		if len(g.Tasks) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", g.Title)
		for _, t := range g.Tasks {
			fmt.Fprintf(w, "  %s\n", taskLine(t))
		}
	}
}

// printLastSaved reports when the task collection was last written, if the
// store keeps that.
func printLastSaved(ctx context.Context, w io.Writer, blobs storage.Blobs) {
	stamped, ok := blobs.(storage.Stamped)
	if !ok {
		return
	}
	ts, err := stamped.UpdatedAt(ctx, storage.TasksKey)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "\nlast saved %s\n", dates.FormatPretty(ts.Local()))
}

func printCalendar(w io.Writer, mode view.CalendarMode, date time.Time, rows [][]view.Cell) {
	switch mode {
	case view.CalendarMonth:
		fmt.Fprintf(w, "%s %d\n", dates.MonthName(date.Month()), date.Year())
		fmt.Fprintln(w, strings.Join(dates.WeekdayLabels[:], "  "))
		for _, row := range rows {
			cells := make([]string, len(row))
			for i, c := range row {
				switch {
				case c.Blank():
					cells[i] = "   "
				case len(c.Tasks) > 0:
					cells[i] = fmt.Sprintf("%2d*", c.Date.Day())
				default:
					cells[i] = fmt.Sprintf("%2d ", c.Date.Day())
				}
			}
			fmt.Fprintln(w, strings.Join(cells, "  "))
		}
	case view.CalendarWeek:
		fmt.Fprintf(w, "Semana del %s\n", dates.FormatDateOnly(dates.StartOfWeek(date, time.Monday)))
	case view.CalendarDay:
		fmt.Fprintln(w, dates.FormatDateOnly(date))
	}

	for _, row := range rows {
		for _, c := range row {
			if len(c.Tasks) == 0 {
				continue
			}
			fmt.Fprintf(w, "\n%s\n", dates.FormatDateOnly(*c.Date))
			for _, t := range c.Tasks {
				fmt.Fprintf(w, "  %s\n", taskLine(t))
			}
		}
	}
}

func taskLine(t task.Task) string {
	check := "[ ]"
	if !t.Active() {
		check = "[x]"
	}
	line := fmt.Sprintf("%s %s %s %s (%s)", check, shortID(t.ID), t.Priority, t.Title, t.When.Label())
	if t.DueDate != nil {
		line += " · " + dates.FormatPretty(*t.DueDate)
	}
	if done, total := t.SubtaskProgress(); total > 0 {
		line += fmt.Sprintf(" · %d/%d", done, total)
	}
	return line
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func parsePriority(v string) (task.Priority, error) {
	p := task.Priority(strings.ToUpper(strings.TrimSpace(v)))
	if !p.Valid() {
		return "", fmt.Errorf("priority %q: want P1-P4", v)
	}
	return p, nil
}

func parseWhen(v string) (task.When, error) {
	w := task.When(strings.ToLower(strings.TrimSpace(v)))
	switch w {
	case task.WhenToday, task.WhenTomorrow, task.WhenScheduled, task.WhenExactDate:
		return w, nil
	}
	return "", fmt.Errorf("when %q: want today, tomorrow, scheduled or exact-date", v)
}
