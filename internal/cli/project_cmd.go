package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/wbsctl/internal/cli/formatter"
	"github.com/alexanderramin/wbsctl/internal/service"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects", "p"},
		Short:   "Manage projects",
	}

	cmd.AddCommand(
		newProjectCreateCmd(app),
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectUpdateCmd(app),
		newProjectCharterCmd(app),
		newProjectDeleteCmd(app),
	)

	return cmd
}

func newProjectCreateCmd(app *App) *cobra.Command {
	var draft service.ProjectDraft

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(draft.Name) == "" {
				if !app.interactive() {
					return fmt.Errorf("--name is required")
				}
				if err := projectForm(&draft).Run(); err != nil {
					return err
				}
			}

			p, err := app.Services.Projects.Create(cmd.Context(), app.Owner, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.Name, "name", "", "Project name")
	cmd.Flags().StringVar(&draft.Description, "description", "", "Project description")
	cmd.Flags().StringVar(&draft.Period, "period", "", "Project period, e.g. \"2025 Q1\"")
	cmd.Flags().StringVar(&draft.Type, "type", "", "Project type")
	cmd.Flags().StringVar(&draft.Goal, "goal", "", "Project goal")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Services.Projects.List(cmd.Context(), app.Owner, query)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "search", "q", "", "Only list projects whose name, description, type or goal contain this text")

	return cmd
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show PROJECT",
		Short: "Show project details and charter",
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
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProject(p))
			return nil
		},
	}
}

func newProjectUpdateCmd(app *App) *cobra.Command {
	var name, description, period, kind, goal string

	cmd := &cobra.Command{
		Use:   "update PROJECT",
		Short: "Update project details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}

			var patch service.DetailsPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("period") {
				patch.Period = &period
			}
			if flags.Changed("type") {
				patch.Type = &kind
			}
			if flags.Changed("goal") {
				patch.Goal = &goal
			}

			p, err := app.Services.Projects.UpdateDetails(cmd.Context(), key, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated project %s (revision %d)\n", p.Name, p.Revision)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().StringVar(&period, "period", "", "Project period")
	cmd.Flags().StringVar(&kind, "type", "", "Project type")
	cmd.Flags().StringVar(&goal, "goal", "", "Project goal")

	return cmd
}

func newProjectCharterCmd(app *App) *cobra.Command {
	fields := map[string]*string{}
	names := []string{"background", "scope", "stakeholders", "budget", "milestones", "risks"}

	cmd := &cobra.Command{
		Use:   "charter PROJECT",
		Short: "Edit the project charter",
		Long:  "Edit the project charter. Only the sections passed as flags change.",
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

			charter := p.Charter
			sections := map[string]*string{
				"background":   &charter.Background,
				"scope":        &charter.Scope,
				"stakeholders": &charter.Stakeholders,
				"budget":       &charter.Budget,
				"milestones":   &charter.Milestones,
				"risks":        &charter.Risks,
			}
			for _, name := range names {
				if cmd.Flags().Changed(name) {
					*sections[name] = *fields[name]
				}
			}

			if _, err := app.Services.Projects.UpdateCharter(cmd.Context(), key, charter); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated charter of %s\n", p.Name)
			return nil
		},
	}

	for _, name := range names {
		fields[name] = cmd.Flags().String(name, "", "Charter "+name)
	}

	return cmd
}

func newProjectDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete PROJECT",
		Aliases: []string{"rm"},
		Short:   "Delete a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if !yes && app.interactive() {
				ok, err := app.confirm(fmt.Sprintf("Delete project %s and all of its tasks?", key.ProjectID))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}
			if err := app.Services.Projects.Delete(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", key.ProjectID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
