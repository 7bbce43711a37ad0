package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-blinky/internal/app"
	"github.com/coreman2200/funtimes-blinky/internal/config"
	"github.com/coreman2200/funtimes-blinky/internal/logging"
	"github.com/coreman2200/funtimes-blinky/internal/render"
	"github.com/coreman2200/funtimes-blinky/internal/settings"
)

// options are the flags shared by every command. They override config.yaml.
type options struct {
	configPath string
	driver     string
	simOnly    bool
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "blinky",
		Short:         "Drive an addressable LED strip from a single button",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	f := root.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to config.yaml")
	f.StringVar(&opts.driver, "driver", "", "driver: spi | console | sim")
	f.BoolVar(&opts.simOnly, "sim-only", false, "force simulation (no hardware at all)")
	f.StringVar(&opts.logLevel, "log-level", "", "trace | debug | info | warn | error")

	root.AddCommand(newPatternsCmd(opts), newConfigCmd(opts))
	return root
}

// setup loads the config, applies flag overrides and builds the logger.
// The returned cleanup closes any serial log port.
func setup(opts *options) (*config.Config, zerolog.Logger, func(), error) {
	cfg := config.Default()
	c, loadErr := config.Load(opts.configPath)
	if loadErr == nil {
		cfg = c
	}
	if opts.driver != "" {
		cfg.Driver = opts.driver
	}
	if opts.simOnly {
		cfg.Driver = "sim"
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	log, closer, err := logging.New(os.Stdout, logging.Options{
		Level:   cfg.LogLevel,
		Serial:  cfg.Serial.Dev,
		Baud:    cfg.Serial.Baud,
		Journal: cfg.LogJournal,
	})
	cleanup := func() { _ = closer.Close() }
	if err != nil {
		log.Warn().Err(err).Msg("logging setup incomplete")
	}
	if loadErr != nil {
		log.Warn().Err(loadErr).Str("path", opts.configPath).Msg("config load failed; using defaults and flags")
	}
	if err := cfg.Validate(render.MaxLEDs); err != nil {
		cleanup()
		return nil, log, nil, err
	}
	return cfg, log, cleanup, nil
}

func run(ctx context.Context, opts *options) error {
	cfg, log, cleanup, err := setup(opts)
	if err != nil {
		log.Error().Err(err).Msg("invalid config")
		return err
	}
	defer cleanup()

	// ---- Hardware ----
	hardware := !opts.simOnly
	if hardware {
		if _, err := host.Init(); err != nil {
			log.Warn().Err(err).Msg("periph host init failed; running without hardware")
			hardware = false
		}
	}

	drv := openDriver(cfg, hardware, log)
	button := openButton(cfg, hardware, log)
	panel, bus := openPanel(cfg, hardware, log)
	if bus != nil {
		defer bus.Close()
	}

	var store settings.Store
	if fs, err := settings.OpenFile(cfg.Settings.Path, cfg.Settings.Namespace); err != nil {
		log.Warn().Err(err).Str("path", cfg.Settings.Path).Msg("settings file unavailable; settings will not survive a restart")
		store = settings.NewMemStore()
	} else {
		store = fs
	}

	// ---- Patterns & loop ----
	reg, err := app.BuildRegistry(app.ShuffleModes(cfg.Shuffle))
	if err != nil {
		log.Error().Err(err).Msg("pattern registry")
		return err
	}
	o, err := app.New(app.Deps{
		Config:   cfg,
		Registry: reg,
		Driver:   drv,
		Store:    store,
		Button:   button,
		Panel:    panel,
		Watchdog: openWatchdog(cfg, hardware, log),
		Log:      log,
	})
	if err != nil {
		log.Error().Err(err).Msg("setup")
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := o.Start(ctx); err != nil {
		log.Info().Err(err).Msg("interrupted during startup")
		_ = o.Shutdown()
		return nil
	}
	if err := o.Run(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
		return err
	}
	return nil
}

func newPatternsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the pattern registry in button order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, cleanup, err := setup(opts)
			if err != nil {
				return err
			}
			defer cleanup()
			reg, err := app.BuildRegistry(app.ShuffleModes(cfg.Shuffle))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, name := range reg.Names() {
				fmt.Fprintf(out, "%3d  %s\n", i, name)
			}
			return nil
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write the effective configuration (defaults, file and flags merged)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, cleanup, err := setup(opts)
			if err != nil {
				return err
			}
			defer cleanup()
			path := output
			if path == "" {
				path = opts.configPath
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			log.Info().Str("path", path).Msg("config written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (defaults to --config)")
	return cmd
}
