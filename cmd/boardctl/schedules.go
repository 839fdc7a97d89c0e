package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tutor-dashboard/board"
	"tutor-dashboard/domain"
)

type scheduleFlags struct {
	task     string
	assignee string
	date     string
	time     string
	status   string
}

func (f *scheduleFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.task, "task", "", "Task name.")
	cmd.Flags().StringVar(&f.assignee, "assignee", "", "Who the task is assigned to.")
	cmd.Flags().StringVar(&f.date, "date", "", "Date, e.g. 2024-05-01.")
	cmd.Flags().StringVar(&f.time, "time", "", "Time, e.g. 09:30.")
	cmd.Flags().StringVar(&f.status, "status", "", "Pending, In Progress or Completed.")
}

// apply overlays every flag that was set on s.
func (f *scheduleFlags) apply(cmd *cobra.Command, s domain.Schedule) domain.Schedule {
	if cmd.Flags().Changed("task") {
		s.TaskName = f.task
	}
	if cmd.Flags().Changed("assignee") {
		s.AssignedTo = f.assignee
	}
	if cmd.Flags().Changed("date") {
		s.Date = f.date
	}
	if cmd.Flags().Changed("time") {
		s.Time = f.time
	}
	if cmd.Flags().Changed("status") {
		s.Status = domain.Status(f.status)
	}
	return s
}

func (c *cli) schedulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedules",
		Short: "List and change booked schedules.",
	}

	var addFlags, editFlags scheduleFlags
	add := &cobra.Command{
		Use:   "add",
		Short: "Book a schedule.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := addFlags.apply(cmd, domain.Schedule{})
			applied, err := c.store.AddOrUpdateSchedule(cmd.Context(), s)
			if err != nil {
				return err
			}
			if !applied {
				return missingFields(s)
			}
			cmd.Println("schedule added")
			return nil
		},
	}
	addFlags.bind(add)

	edit := &cobra.Command{
		Use:   "edit <index>",
		Short: "Change fields of a schedule in place.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := indexArg(args[0])
			if err != nil {
				return err
			}
			current, err := c.store.BeginEditSchedule(idx)
			if err != nil {
				return err
			}
			s := editFlags.apply(cmd, current)
			applied, err := c.store.AddOrUpdateSchedule(cmd.Context(), s)
			if err != nil {
				return err
			}
			if !applied {
				c.store.CancelScheduleEdit()
				return missingFields(s)
			}
			cmd.Printf("updated schedule %d\n", idx)
			return nil
		},
	}
	editFlags.bind(edit)

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the schedules as CSV.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeOutput(cmd, out, c.store.ExportSchedulesCSV())
		},
	}
	export.Flags().StringVarP(&out, "output", "o", "", "Write to this file instead of stdout.")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List schedules in booking order.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				for i, s := range c.store.Schedules() {
					cmd.Printf("%d. %s | %s | %s %s | %s\n", i, s.TaskName, s.AssignedTo, s.Date, s.Time, s.Status)
				}
				return nil
			},
		},
		add,
		edit,
		&cobra.Command{
			Use:     "rm <index>",
			Aliases: []string{"delete"},
			Short:   "Delete a schedule.",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				idx, err := indexArg(args[0])
				if err != nil {
					return err
				}
				if err := c.store.DeleteSchedule(cmd.Context(), idx); err != nil {
					return err
				}
				cmd.Printf("deleted schedule %d\n", idx)
				return nil
			},
		},
		export,
		&cobra.Command{
			Use:   "import <file|->",
			Short: "Append schedules from a CSV file.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				raw, err := readInput(cmd, args[0])
				if err != nil {
					return err
				}
				imported, dropped, err := c.store.ImportSchedulesCSV(cmd.Context(), raw)
				if err != nil {
					return err
				}
				cmd.Printf("imported %d schedules, skipped %d rows\n", imported, dropped)
				return nil
			},
		},
	)
	return cmd
}

func missingFields(s domain.Schedule) error {
	warnings := board.ValidateSchedule(s)
	msgs := make([]string, 0, len(warnings))
	for _, field := range []string{"taskName", "assignedTo", "date", "time"} {
		if msg, ok := warnings[field]; ok {
			msgs = append(msgs, msg)
		}
	}
	return fmt.Errorf("schedule not saved: %s", strings.Join(msgs, ", "))
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
