package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/wbsctl/internal/cli/formatter"
	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/exporter"
	"github.com/alexanderramin/wbsctl/internal/scheduler"
	"github.com/alexanderramin/wbsctl/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var into, formatFlag string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a task table into a project, or a JSON document as a new project",
		Long: `Import a file.

CSV and XLSX tables replace the task tree of the project named by --into.
Unknown department progress columns become new departments. A JSON project
document is always stored as a new project.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			format, err := importFormat(path, formatFlag)
			if err != nil {
				return err
			}

			var result *service.ImportResult
			switch {
			case format == domain.FormatJSON:
				if into != "" {
					return domain.Invalid(nil, "into", "--into applies to CSV and XLSX tables only")
				}
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				if result, err = app.Services.Import.ImportDocument(cmd.Context(), app.Owner, f); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported project %s (%s) with %d tasks\n", result.Project.Name, result.Project.ID, result.TaskCount)
			case format.Tabular():
				if into == "" {
					return domain.Invalid(nil, "into", "--into is required when importing a %s table", format)
				}
				key, err := resolveProject(cmd.Context(), app, into)
				if err != nil {
					return err
				}
				if formatFlag == "" {
					result, err = app.Services.Import.ImportTableFile(cmd.Context(), key, path)
				} else {
					result, err = importTable(cmd.Context(), app, key, path, format)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks into %s\n", result.TaskCount, result.Project.Name)
				if result.DepartmentsCreated > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Created %d departments\n", result.DepartmentsCreated)
				}
			default:
				return domain.Invalid(nil, "format", "%s files cannot be imported", format)
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWarnings(result.Warnings))
			return nil
		},
	}

	cmd.Flags().StringVar(&into, "into", "", "Project whose tasks a CSV or XLSX table replaces")
	cmd.Flags().StringVar(&formatFlag, "format", "", "Override the format inferred from the file extension")

	return cmd
}

func importFormat(path, flag string) (domain.Format, error) {
	if flag != "" {
		return domain.ParseFormat(flag)
	}
	return domain.FormatFromPath(path)
}

func importTable(ctx context.Context, app *App, key domain.ProjectKey, path string, format domain.Format) (*service.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return app.Services.Import.ImportTable(ctx, key, f, format)
}

func newExportCmd(app *App) *cobra.Command {
	var formatFlag, out string
	var opts exporter.Options

	cmd := &cobra.Command{
		Use:   "export PROJECT",
		Short: "Export a project as CSV, XLSX, JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			key, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}

			if formatFlag == "" && out != "" {
				formatFlag = string(domain.FormatCSV)
				if f, ferr := domain.FormatFromPath(out); ferr == nil {
					formatFlag = string(f)
				}
			}
			format := domain.FormatCSV
			if formatFlag != "" {
				if format, err = domain.ParseFormat(formatFlag); err != nil {
					return err
				}
			}
			opts.Baseline = app.Baseline

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, ferr := os.Create(out)
				if ferr != nil {
					return ferr
				}
				defer func() {
					if cerr := f.Close(); err == nil {
						err = cerr
					}
				}()
				w = f
			}

			if err := app.Services.Export.Export(cmd.Context(), key, format, w, opts); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", format, out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "csv, xlsx, json or yaml (default from --out, else csv)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&opts.OmitDerived, "no-derived", false, "Leave out the planned progress, overall progress, gap and duration columns")
	cmd.Flags().BoolVar(&opts.Indent, "indent", false, "Indent task names by depth")

	return cmd
}

func newSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary PROJECT",
		Short: "Show overall progress, status counts and delayed tasks",
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
			s, err := app.Services.Summary.Summary(cmd.Context(), key, app.Baseline)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSummary(p.Name, s))
			return nil
		},
	}
}

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch PROJECT",
		Short: "Follow a project live; prints one line per change when not on a terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			key, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			snapshots, err := app.Services.Watch.Watch(ctx, key)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if app.interactive() {
				return runWatchView(ctx, w, key, snapshots, app.Baseline)
			}
			for p := range snapshots {
				if p == nil {
					fmt.Fprintf(w, "Project %s was deleted\n", key.ProjectID)
					return nil
				}
				fmt.Fprintf(w, "rev %d  %s  %s  %d tasks  overall %d%%\n",
					p.Revision,
					p.UpdatedAt.Local().Format("15:04:05"),
					p.Name,
					len(p.Tasks),
					scheduler.ProjectProgress(p.Tasks, p.Departments))
			}
			return nil
		},
	}
}

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Serve == nil {
				return fmt.Errorf("serve is not available in this build")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Serve(ctx)
		},
	}
}

// runWatchView drives the live tree until the user quits, ctx ends or the
// project is deleted.
func runWatchView(ctx context.Context, w io.Writer, key domain.ProjectKey, snapshots <-chan *domain.Project, baseline string) error {
	if baseline == "" {
		baseline = domain.FormatDay(domain.Today())
	}
	prog := tea.NewProgram(newWatchModel(snapshots, baseline),
		tea.WithContext(ctx),
		tea.WithOutput(w),
		tea.WithAltScreen(),
	)
	final, err := prog.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running watch view: %w", err)
	}
	if m, ok := final.(watchModel); ok && m.deleted {
		fmt.Fprintf(w, "Project %s was deleted\n", key.ProjectID)
	}
	return nil
}
