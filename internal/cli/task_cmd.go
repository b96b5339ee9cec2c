package cli

import (
	"fmt"

	"github.com/alexanderramin/wbsctl/internal/cli/formatter"
	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/wbs"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks", "t"},
		Short:   "Manage the task tree of a project",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskListCmd(app),
		newTaskUpdateCmd(app),
		newTaskDeleteCmd(app),
		newTaskMoveCmd(app),
		newTaskToggleCmd(app),
	)

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var parent, status string
	var draft wbs.TaskDraft

	cmd := &cobra.Command{
		Use:   "add PROJECT",
		Short: "Add a top-level task, or a first child with --parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("name") && app.interactive() {
				state := taskFormState{Status: string(domain.StatusNotStarted)}
				if err := taskForm(&state).Run(); err != nil {
					return err
				}
				draft.Name, draft.Assignee, draft.DeliverableName = state.Name, state.Assignee, state.Deliverable
				draft.StartDate, draft.EndDate, status = state.Start, state.End, state.Status
			}
			draft.Status = domain.Status(status)

			var id string
			if parent != "" {
				_, id, err = app.Services.Tasks.AddSub(cmd.Context(), key, parent, draft)
			} else {
				_, id, err = app.Services.Tasks.Add(cmd.Context(), key, draft)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent task id; the new task becomes its first child")
	cmd.Flags().StringVar(&draft.Name, "name", "", "Task name")
	cmd.Flags().StringVar(&draft.Assignee, "assignee", "", "Assignee")
	cmd.Flags().StringVar(&draft.DeliverableName, "deliverable", "", "Deliverable name")
	cmd.Flags().StringVar(&draft.Notes, "notes", "", "Notes")
	cmd.Flags().StringVar(&draft.StartDate, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&draft.EndDate, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", "", "Status: not started, in progress, completed or on hold")

	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "list PROJECT",
		Short: "List tasks with progress and schedule metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			rows, err := app.Services.Tasks.List(cmd.Context(), key, app.Baseline)
			if err != nil {
				return err
			}
			if tree {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskTree(rows))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskTable(rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "Render as an outline")

	return cmd
}

func newTaskUpdateCmd(app *App) *cobra.Command {
	var name, assignee, deliverable, notes, status, start, end string
	var progress map[string]int

	cmd := &cobra.Command{
		Use:   "update PROJECT TASK",
		Short: "Update a task",
		Long: `Update a task. Only the flags given change.

Dates and department progress are derived on parent tasks and can only be
set on leaves. Progress keys are department names or ids, for example
--progress Design=60,Engineering=20.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}

			var patch wbs.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("assignee") {
				patch.Assignee = &assignee
			}
			if flags.Changed("deliverable") {
				patch.DeliverableName = &deliverable
			}
			if flags.Changed("notes") {
				patch.Notes = &notes
			}
			if flags.Changed("status") {
				st := domain.Status(status)
				patch.Status = &st
			}
			if flags.Changed("start") {
				patch.StartDate = &start
			}
			if flags.Changed("end") {
				patch.EndDate = &end
			}
			if flags.Changed("progress") {
				patch.DepartmentProgress = progress
			}

			if _, err := app.Services.Tasks.Update(cmd.Context(), key, args[1], patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Task name")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee")
	cmd.Flags().StringVar(&deliverable, "deliverable", "", "Deliverable name")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().StringVar(&status, "status", "", "Status")
	cmd.Flags().StringVar(&start, "start", "", "Start date (leaf tasks only)")
	cmd.Flags().StringVar(&end, "end", "", "End date (leaf tasks only)")
	cmd.Flags().StringToIntVar(&progress, "progress", nil, "Department progress, e.g. Design=60 (leaf tasks only)")

	return cmd
}

func newTaskDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete PROJECT TASK",
		Aliases: []string{"rm"},
		Short:   "Delete a task and its subtree",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if _, err := app.Services.Tasks.Delete(cmd.Context(), key, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s; remaining tasks renumbered\n", args[1])
			return nil
		},
	}
}

func newTaskMoveCmd(app *App) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "move PROJECT TASK",
		Short: "Move a task before --to as its sibling, or to the end of the top level",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if _, err := app.Services.Tasks.Move(cmd.Context(), key, args[1], target); err != nil {
				return err
			}
			if target == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Moved task %s to the end\n", args[1])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved task %s before %s\n", args[1], target)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "to", "", "Task to drop before; empty moves to the end of the top level")

	return cmd
}

func newTaskToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle PROJECT TASK",
		Short: "Toggle whether a task is shown expanded",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Services.Tasks.ToggleExpand(cmd.Context(), key, args[1])
			if err != nil {
				return err
			}
			state := "collapsed"
			if t := findTask(p, args[1]); t != nil && t.IsExpanded {
				state = "expanded"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s %s\n", args[1], state)
			return nil
		},
	}
}

func findTask(p *domain.Project, id string) *domain.Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}
