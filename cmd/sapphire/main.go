package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/sapphire-forecast/sapphire-go/internal/cliconfig"
	"github.com/sapphire-forecast/sapphire-go/pkg/log"
	"github.com/sapphire-forecast/sapphire-go/pkg/metrics"
	"github.com/sapphire-forecast/sapphire-go/pkg/sapphire"
)

const helpDescription = `
Read and write SAPPHIRE hydrological forecasting data from the command line.

Highlights:
  - Retries transient gateway failures (502/503/504) with exponential backoff.
  - Posts large files in sequential batches and stops at the first failure.
  - Watches a spool directory and uploads new CSV or JSON files as they land.
  - Configure via file ($HOME/.sapphire/config.toml), SAPPHIRE_* env, or flags.
`

var exampleUsage = strings.TrimSpace(`
  sapphire health
  sapphire read runoff --horizon day --code 15013 --start 2024-01-01 --end 2024-01-31
  sapphire write forecasts ./forecasts.csv --batch-size 500
  sapphire watch snow /var/spool/sapphire/snow --metrics-addr :9090
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app carries the state shared by subcommands once the root command has
// resolved its configuration.
type app struct {
	cfg     cliconfig.Config
	cfgPath string
	envFile string

	zl       zerolog.Logger
	logger   log.Logger
	registry *prometheus.Registry
	client   *sapphire.Client
}

func main() {
	a := newApp()
	root := newRootCmd(a)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		a.zl.Error().Err(err).Msg("sapphire")
		stop()
		os.Exit(1)
	}
}

func newApp() *app {
	return &app{
		cfg: cliconfig.DefaultConfig(),
		zl:  zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger(),
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "sapphire",
		Short:             "Client for the SAPPHIRE forecasting API",
		Long:              strings.TrimSpace(helpDescription),
		Example:           exampleUsage,
		Version:           fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "path to config file, .toml or .yaml (default: $HOME/.sapphire/config.toml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading SAPPHIRE_* variables")
	flags.StringVar(&a.cfg.BaseURL, "base-url", a.cfg.BaseURL, "API gateway base URL")
	flags.StringVar(&a.cfg.Token, "token", a.cfg.Token, "bearer token for authentication")
	flags.DurationVar(&a.cfg.Timeout, "timeout", a.cfg.Timeout, "timeout for a single HTTP attempt")
	flags.IntVar(&a.cfg.MaxRetries, "max-retries", a.cfg.MaxRetries, "maximum attempts per request, the first one included")
	flags.DurationVar(&a.cfg.BaseDelay, "base-delay", a.cfg.BaseDelay, "wait after the first failed attempt; doubles after each retry")
	flags.DurationVar(&a.cfg.MaxDelay, "max-delay", a.cfg.MaxDelay, "cap on a single backoff wait, 0 for no cap")
	flags.IntVar(&a.cfg.BatchSize, "batch-size", a.cfg.BatchSize, "records per POST")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&a.cfg.MetricsAddr, "metrics-addr", a.cfg.MetricsAddr, "serve Prometheus metrics on this address (e.g. :9090)")

	root.AddCommand(
		newHealthCmd(a),
		newReadCmd(a),
		newWriteCmd(a),
		newWatchCmd(a),
		newDatasetsCmd(),
	)
	return root
}

// setup resolves the configuration (flags > env > file > defaults) and
// builds the logger, metrics registry and client.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "datasets" {
		return nil
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	} else if a.cfgPath != "" {
		return fmt.Errorf("config file %s not found", a.cfgPath)
	}

	if err := cliconfig.LoadDotEnv(a.envFile); err != nil {
		return fmt.Errorf("load %s: %w", a.envFile, err)
	}
	if err := cliconfig.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	level, err := log.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return err
	}
	a.zl = a.zl.Level(level)
	a.logger = log.NewZerologAdapterWithLogger(a.zl)

	a.zl.Debug().Interface("config", a.cfg.Masked()).Msg("configuration")

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector(a.registry)

	client, err := sapphire.New(a.cfg.ClientConfig(),
		sapphire.WithLogger(a.logger),
		sapphire.WithObserver(m),
		sapphire.WithBatchObserver(m),
	)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	a.client = client
	a.logger.Debug("client ready", log.String("client", client.String()))

	if a.cfg.MetricsAddr != "" {
		a.serveMetrics(cmd.Context())
	}
	return nil
}

// serveMetrics exposes the registry until ctx is done.
func (a *app) serveMetrics(ctx context.Context) {
	r := chi.NewRouter()
	r.Handle("/metrics", metrics.Handler(a.registry))

	srv := &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("metrics server listening", log.String("addr", a.cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", log.Err(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
