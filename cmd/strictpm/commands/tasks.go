package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/strictpm/core/internal/domain/entities"
	"github.com/strictpm/core/internal/ports"
)

// NewTasksCommand creates the task management command
func NewTasksCommand() *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task management commands",
		Long:  "List, add, start, complete and delete tasks directly against the configured storage",
	}

	tasksCmd.AddCommand(newTasksListCommand())
	tasksCmd.AddCommand(newTasksAddCommand())
	tasksCmd.AddCommand(newTaskActionCommand("start <id>", "Start a pending task", "started"))
	tasksCmd.AddCommand(newTaskActionCommand("toggle <id>", "Toggle task completion", "toggled"))
	tasksCmd.AddCommand(newTasksDeleteCommand())

	return tasksCmd
}

func newTasksListCommand() *cobra.Command {
	var (
		date   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			var filter ports.TaskFilter
			if date != "" {
				filter.Date = &date
			}

			tasks, err := a.taskService().ListTasks(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), tasks)
			}
			printTasks(cmd.OutOrStdout(), tasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Only tasks of this day (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newTasksAddCommand() *cobra.Command {
	var (
		req      ports.CreateTaskRequest
		tag      string
		subtasks []string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := entities.ParseTaskTag(tag)
			if err != nil {
				return fmt.Errorf("tag %q: %w", tag, err)
			}
			req.Title = args[0]
			req.Tag = parsed
			for _, title := range subtasks {
				req.Subtasks = append(req.Subtasks, ports.SubtaskInput{Title: title})
			}

			a, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.taskService().CreateTask(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Task created: %s (%s)\n", task.ID, task.Date)
			return nil
		},
	}

	cmd.Flags().IntVar(&req.EstimatedDuration, "duration", 30, "Estimated duration in minutes")
	cmd.Flags().StringVar(&tag, "tag", string(entities.TaskTagOther), "Tag (Life, Study, Work, Health, Other)")
	cmd.Flags().StringVar(&req.Date, "date", "", "Day of the task (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringArrayVar(&subtasks, "subtask", nil, "Subtask title (repeatable)")
	return cmd
}

func newTaskActionCommand(use, short, verb string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			svc := a.taskService()
			var task *entities.Task
			if verb == "started" {
				task, err = svc.StartTask(cmd.Context(), args[0])
			} else {
				task, err = svc.ToggleTask(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Task %s %s: %s\n", task.ID, verb, task.Status)
			return nil
		},
	}
}

func newTasksDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.taskService().DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Task %s deleted\n", args[0])
			return nil
		},
	}
}

func printTasks(out io.Writer, tasks []entities.Task) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSTATUS\tTAG\tMIN\tSUBTASKS\tTITLE")
	for _, t := range tasks {
		subtasks := "-"
		if t.HasSubtasks() {
			subtasks = fmt.Sprintf("%d/%d", t.CompletedSubtasks(), len(t.Subtasks))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			t.ID, t.Date, t.Status, t.Tag, t.EstimatedDuration, subtasks, t.Title)
	}
	w.Flush()
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
