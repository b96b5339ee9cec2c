package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/alexanderramin/wbsctl/internal/cli/formatter"
	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/wbs"
	"github.com/spf13/cobra"
)

func newDeptCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dept",
		Aliases: []string{"department", "departments"},
		Short:   "Manage the weighted department ledger",
	}

	cmd.AddCommand(
		newDeptAddCmd(app),
		newDeptListCmd(app),
		newDeptRenameCmd(app),
		newDeptWeightCmd(app),
		newDeptRemoveCmd(app),
	)

	return cmd
}

func newDeptAddCmd(app *App) *cobra.Command {
	var weight float64

	cmd := &cobra.Command{
		Use:   "add PROJECT NAME",
		Short: "Add a department; every task starts at 0% for it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Services.Departments.Add(cmd.Context(), key, args[1], weight)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added department %s (total weight %g)\n", args[1], p.Departments.TotalWeight())
			return nil
		},
	}

	cmd.Flags().Float64Var(&weight, "weight", domain.DefaultDepartmentWeight, "Department weight; the project total may not exceed 100")

	return cmd
}

func newDeptListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List departments and their weights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			depts, err := app.Services.Departments.List(cmd.Context(), key)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDepartments(depts))
			return nil
		},
	}
}

func newDeptRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename PROJECT OLD NEW",
		Short: "Rename a department; recorded progress is kept",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if _, err := app.Services.Departments.Rename(cmd.Context(), key, args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed department %s to %s\n", args[1], args[2])
			return nil
		},
	}
}

func newDeptWeightCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "weight PROJECT NAME WEIGHT",
		Short: "Change a department's weight",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			w, err := parseWeight(args[2])
			if err != nil {
				return err
			}
			p, err := app.Services.Departments.SetWeight(cmd.Context(), key, args[1], w)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s weight (total weight %g)\n", args[1], p.Departments.TotalWeight())
			return nil
		},
	}
}

func newDeptRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove PROJECT NAME",
		Aliases: []string{"rm"},
		Short:   "Remove a department and its progress from every task",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if !yes && app.interactive() {
				ok, err := app.confirm(fmt.Sprintf("Remove department %s? Its progress is dropped from every task.", args[1]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}
			if _, err := app.Services.Departments.Remove(cmd.Context(), key, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed department %s\n", args[1])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newTeamCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Manage the project org chart",
	}

	cmd.AddCommand(
		newTeamAddCmd(app),
		newTeamListCmd(app),
		newTeamUpdateCmd(app),
		newTeamRemoveCmd(app),
		newTeamMoveCmd(app),
	)

	return cmd
}

func newTeamAddCmd(app *App) *cobra.Command {
	var parent, name, role string

	cmd := &cobra.Command{
		Use:   "add PROJECT",
		Short: "Add a team member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			_, id, err := app.Services.Team.Add(cmd.Context(), key, parent, name, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added team member %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Member this one reports to")
	cmd.Flags().StringVar(&name, "name", "", "Member name")
	cmd.Flags().StringVar(&role, "role", "", "Member role")

	return cmd
}

func newTeamListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "Show the org chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Services.Projects.Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTeam(wbs.WalkTeam(p.Team)))
			return nil
		},
	}
}

func newTeamUpdateCmd(app *App) *cobra.Command {
	var name, role string

	cmd := &cobra.Command{
		Use:   "update PROJECT MEMBER",
		Short: "Rename a member or change their role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			var namePtr, rolePtr *string
			if cmd.Flags().Changed("name") {
				namePtr = &name
			}
			if cmd.Flags().Changed("role") {
				rolePtr = &role
			}
			if _, err := app.Services.Team.Update(cmd.Context(), key, args[1], namePtr, rolePtr); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated team member %s\n", args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Member name")
	cmd.Flags().StringVar(&role, "role", "", "Member role")

	return cmd
}

func newTeamRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove PROJECT MEMBER",
		Aliases: []string{"rm"},
		Short:   "Remove a member and everyone reporting to them",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if _, err := app.Services.Team.Remove(cmd.Context(), key, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed team member %s\n", args[1])
			return nil
		},
	}
}

func newTeamMoveCmd(app *App) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "move PROJECT MEMBER",
		Short: "Make a member report to --to, or to nobody",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if _, err := app.Services.Team.Move(cmd.Context(), key, args[1], target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved team member %s\n", args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "to", "", "New manager; empty makes the member top level")

	return cmd
}

func newDeliverableCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deliverable",
		Aliases: []string{"deliverables", "d"},
		Short:   "Manage versioned task deliverables",
	}

	cmd.AddCommand(
		newDeliverableAddCmd(app),
		newDeliverableVersionCmd(app),
		newDeliverableListCmd(app),
		newDeliverableRemoveCmd(app),
	)

	return cmd
}

func readUpload(path string) (wbs.Upload, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return wbs.Upload{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return wbs.Upload{
		FileName: filepath.Base(path),
		FileType: mime.TypeByExtension(filepath.Ext(path)),
		Content:  content,
	}, nil
}

func newDeliverableAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add PROJECT TASK FILE",
		Short: "Upload a file as a new deliverable of a task",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			up, err := readUpload(args[2])
			if err != nil {
				return err
			}
			_, id, err := app.Services.Deliverables.Add(cmd.Context(), key, args[1], up)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added deliverable %s (v1)\n", id)
			return nil
		},
	}
}

func newDeliverableVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version PROJECT TASK DELIVERABLE FILE",
		Short: "Upload a new version of a deliverable",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			up, err := readUpload(args[3])
			if err != nil {
				return err
			}
			_, v, err := app.Services.Deliverables.AddVersion(cmd.Context(), key, args[1], args[2], up)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s as v%d\n", up.FileName, v)
			return nil
		},
	}
}

func newDeliverableListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT TASK",
		Short: "List a task's deliverables",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Services.Projects.Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			t := findTask(p, args[1])
			if t == nil {
				return domain.NotFound("task", args[1])
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDeliverables(*t))
			return nil
		},
	}
}

func newDeliverableRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove PROJECT TASK DELIVERABLE",
		Aliases: []string{"rm"},
		Short:   "Remove a deliverable with all of its versions",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if _, err := app.Services.Deliverables.Remove(cmd.Context(), key, args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed deliverable %s\n", args[2])
			return nil
		},
	}
}
