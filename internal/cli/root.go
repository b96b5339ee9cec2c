// Package cli implements the wbsctl command tree on top of the service
// layer.
package cli

import (
	"context"
	"os"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// App holds the services and session settings used by CLI commands.
type App struct {
	Services *service.Services
	// Owner scopes every project lookup.
	Owner string
	// Baseline is the default day for schedule metrics. Empty means today.
	Baseline string
	// Serve runs the HTTP API until ctx ends. Nil disables the serve command.
	Serve func(ctx context.Context) error
	// IsInteractive reports whether prompts may be shown.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Defaults to a huh confirm form.
	Confirm func(title string) (bool, error)
	Now     func() time.Time
}

// SetupFunc prepares app once flags are parsed and before any command runs.
type SetupFunc func(cmd *cobra.Command, app *App) error

// NewRootCmd creates the top-level "wbsctl" command and registers all
// subcommands against app. setup may be nil when app is already wired.
func NewRootCmd(app *App, setup SetupFunc) *cobra.Command {
	var user, baseline string

	root := &cobra.Command{
		Use:           "wbsctl",
		Short:         "Work breakdown structure planner with department weighted progress",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == cobra.ShellCompRequestCmd {
				return nil
			}
			if setup != nil {
				if err := setup(cmd, app); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("user") {
				app.Owner = user
			}
			if cmd.Flags().Changed("baseline") {
				app.Baseline = baseline
			}
			if app.Baseline != "" {
				day, ok := domain.NormalizeDay(app.Baseline)
				if !ok {
					return domain.Invalid(nil, "baseline", "invalid baseline date %q", app.Baseline)
				}
				app.Baseline = day
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (default ./wbsctl.yaml or ~/.wbsctl/wbsctl.yaml)")
	pf.StringVar(&user, "user", "", "Owner whose projects are addressed")
	pf.StringVar(&baseline, "baseline", "", "Day schedule metrics are computed at (YYYY-MM-DD, default today)")
	pf.String("store", "", "Storage driver: sqlite, postgres or redis")
	pf.String("db", "", "SQLite database path")
	pf.String("log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(
		newProjectCmd(app),
		newTaskCmd(app),
		newDeptCmd(app),
		newTeamCmd(app),
		newDeliverableCmd(app),
		newImportCmd(app),
		newExportCmd(app),
		newSummaryCmd(app),
		newWatchCmd(app),
		newServeCmd(app),
	)

	return root
}

func (a *App) interactive() bool {
	if a.IsInteractive != nil {
		return a.IsInteractive()
	}
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

func (a *App) confirm(title string) (bool, error) {
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	return confirmForm(title)
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) key(projectID string) domain.ProjectKey {
	return domain.ProjectKey{Owner: a.Owner, ProjectID: projectID}
}
