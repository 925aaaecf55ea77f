package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"quillcheck/pkg/chains"
	"quillcheck/pkg/config"
	"quillcheck/pkg/device"
	"quillcheck/pkg/flow"
	"quillcheck/pkg/logging"
	"quillcheck/pkg/metrics"
	"quillcheck/pkg/report"
	"quillcheck/pkg/rpc"
	"quillcheck/pkg/server"
	"quillcheck/pkg/tui"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version should be set during build
var Version = "dev"

type options struct {
	configPath string
	test       bool
	jsonOut    bool
	serverMode bool
	port       int
	initConfig bool
	restore    bool
	version    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "quillcheck [config]",
		Short:        "Check a token contract address for risk findings",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath == "" && len(args) > 0 {
				opts.configPath = args[0]
			}
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	f.BoolVarP(&opts.test, "test", "t", false, "Test configuration and exit")
	f.BoolVar(&opts.jsonOut, "json", false, "Output test results as JSON")
	f.BoolVar(&opts.serverMode, "server", false, "Run in headless server mode")
	f.IntVar(&opts.port, "port", 8080, "Port for API server")
	f.BoolVar(&opts.initConfig, "init", false, "Write a starter configuration and exit")
	f.BoolVar(&opts.restore, "restore", false, "Restore the newest configuration backup and exit")
	f.BoolVar(&opts.version, "version", false, "Print version and exit")
	return cmd
}

func run(ctx context.Context, out io.Writer, opts options) error {
	if opts.version {
		_, _ = fmt.Fprintf(out, "quillcheck version %s\n", Version)
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	path, err := config.GetConfigPath(opts.configPath)
	if err != nil {
		return fmt.Errorf("determining config path: %w", err)
	}
	reg := chains.Default()

	if opts.restore {
		restored, err := config.RestoreLastBackup(path)
		if err != nil {
			return fmt.Errorf("restoring backup: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Restored %s from %s\n", path, restored)
		return nil
	}
	if opts.initConfig {
		if err := config.SaveConfig(config.Starter(reg), reg, path); err != nil {
			return fmt.Errorf("writing starter config: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Wrote starter configuration to %s\n", path)
		return nil
	}

	_ = godotenv.Load()
	cfg, err := config.LoadConfigFromFile(path)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", path, err)
	}
	cfg = config.ApplyEnv(cfg)

	if opts.test {
		res := testConfig(ctx, out, path, cfg, reg, opts.jsonOut)
		if !res.OK() {
			return fmt.Errorf("configuration test failed")
		}
		return nil
	}

	level := cfg.LogLevel
	if !opts.serverMode && cfg.LogFile == "" {
		level = "off"
	}
	log, closer, err := logging.New(level, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = closer.Close() }()

	m := metrics.New()
	dispatcher := report.NewDispatcher(newDataSource(cfg, reg), log, cfg.RequestTimeout())
	dispatcher.SetMetrics(m)
	validator := chains.Validator{Strict: cfg.StrictAddressFormat}

	if opts.serverMode {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.NewServer(server.Options{
			Registry:        reg,
			Dispatcher:      dispatcher,
			Metrics:         m,
			Logger:          log,
			Validator:       validator,
			StrictFaults:    cfg.DevMode,
			RatePerMinute:   120,
			Version:         Version,
			RequestDeadline: cfg.RequestTimeout(),
		})
		return srv.Start(ctx, opts.port)
	}

	log.Info().Str("config", path).Msg("starting terminal UI")
	return tui.Start(tui.Deps{
		Registry:   reg,
		Dispatcher: dispatcher,
		Device:     device.NewAdapter(cfg.CompactThresholdPx, cfg.CellWidthPx),
		Config:     cfg,
		Logger:     log,
		Controller: []flow.Option{
			flow.WithValidator(validator),
			flow.WithMetrics(m),
			flow.WithStrictFaults(cfg.DevMode),
			flow.WithResetOnBack(cfg.ResetOnBack),
		},
	}, Version)
}

// newDataSource returns nil when no risk API is configured; the dispatcher
// then fails every fetch with report.ErrNoDataSource.
func newDataSource(cfg config.Config, reg *chains.Registry) report.DataSource {
	if cfg.ReportAPIURL == "" {
		return nil
	}
	return &rpc.TokenNameSource{
		Next: &rpc.HTTPDataSource{
			BaseURL: cfg.ReportAPIURL,
			Client:  &http.Client{Timeout: cfg.RequestTimeout()},
		},
		RPCURLs: cfg.RPCURLsByChainID(reg),
	}
}
