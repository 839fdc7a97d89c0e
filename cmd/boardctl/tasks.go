package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tutor-dashboard/domain"
)

func (c *cli) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and change board tasks.",
	}

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the tasks as CSV.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeOutput(cmd, out, c.store.ExportTasksCSV())
		},
	}
	export.Flags().StringVarP(&out, "output", "o", "", "Write to this file instead of stdout.")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list [category]",
			Short: "List tasks, optionally for one category.",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, col := range c.store.Columns() {
					if len(args) == 1 && col.Category != categoryArg(args[0]) {
						continue
					}
					cmd.Printf("%s:\n", col.Category)
					for i, t := range col.Tasks {
						cmd.Printf("  %d. %s\n", i, t.Text)
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <category> <text>...",
			Short: "Append a task to a category.",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				category := categoryArg(args[0])
				applied, err := c.store.AddOrUpdateTask(cmd.Context(), category, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				if !applied {
					return fmt.Errorf("task text is empty")
				}
				cmd.Printf("added to %s\n", category)
				return nil
			},
		},
		&cobra.Command{
			Use:   "edit <category> <index> <text>...",
			Short: "Replace the text of a task in place.",
			Args:  cobra.MinimumNArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				category := categoryArg(args[0])
				idx, err := indexArg(args[1])
				if err != nil {
					return err
				}
				if _, err := c.store.BeginEditTask(category, idx); err != nil {
					return err
				}
				applied, err := c.store.AddOrUpdateTask(cmd.Context(), category, strings.Join(args[2:], " "))
				if err != nil {
					return err
				}
				if !applied {
					c.store.CancelTaskEdit()
					return fmt.Errorf("task text is empty")
				}
				cmd.Printf("updated %s[%d]\n", category, idx)
				return nil
			},
		},
		&cobra.Command{
			Use:     "rm <category> <index>",
			Aliases: []string{"delete"},
			Short:   "Delete a task.",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				category := categoryArg(args[0])
				idx, err := indexArg(args[1])
				if err != nil {
					return err
				}
				if err := c.store.DeleteTask(cmd.Context(), category, idx); err != nil {
					return err
				}
				cmd.Printf("deleted %s[%d]\n", category, idx)
				return nil
			},
		},
		export,
	)
	return cmd
}

// categoryArg accepts a fixed column by label or identifier; anything else is
// taken verbatim so retained extra columns stay reachable.
func categoryArg(s string) domain.Category {
	if c, ok := domain.ParseCategory(s); ok {
		return c
	}
	return domain.Category(s)
}

func indexArg(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return n, nil
}

func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		cmd.Println(content)
		return nil
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
