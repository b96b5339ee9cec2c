package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/wbsctl/internal/cli"
	"github.com/alexanderramin/wbsctl/internal/config"
	"github.com/alexanderramin/wbsctl/internal/httpapi"
	"github.com/alexanderramin/wbsctl/internal/logging"
	"github.com/alexanderramin/wbsctl/internal/metrics"
	"github.com/alexanderramin/wbsctl/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var st *store
	defer func() {
		if st != nil {
			st.Close()
		}
	}()

	app := &cli.App{
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}

	setup := func(cmd *cobra.Command, app *cli.App) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
		if cmd.Name() != "serve" && !levelRequested(cmd) {
			// one-shot commands only report problems
			logger = logger.Level(zerolog.WarnLevel)
		}

		st, err = openStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		logger.Debug().Str("driver", cfg.Store.Driver).Str("config", cfg.File).Msg("store opened")

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := metrics.New(reg)

		app.Services = service.New(st.repo, m, service.NewLogUseCaseObserver(logger))
		app.Owner = cfg.User
		app.Baseline = cfg.Baseline
		app.Serve = func(ctx context.Context) error {
			if err := cfg.ValidateServe(); err != nil {
				return err
			}
			srv := httpapi.NewServer(httpapi.Options{
				Services: app.Services,
				Auth:     httpapi.AuthConfig{JWTSecret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.Issuer},
				Logger:   logger,
				Metrics:  m,
				Gatherer: reg,
				Health:   st.health,
			})
			logger.Info().
				Str("addr", cfg.Server.Addr()).
				Str("store", cfg.Store.Driver).
				Str("environment", cfg.Server.Environment).
				Msg("http server listening")
			if err := srv.Run(ctx, cfg.Server.Addr(), cfg.Server.ShutdownTimeout); err != nil {
				return err
			}
			logger.Info().Msg("http server stopped")
			return nil
		}
		return nil
	}

	return cli.NewRootCmd(app, setup).Execute()
}

func levelRequested(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("log-level") {
		return true
	}
	_, ok := os.LookupEnv(config.EnvPrefix + "_LOG_LEVEL")
	return ok
}
