package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"xrpl-trustcheck/internal/app"
	"xrpl-trustcheck/internal/config"
	"xrpl-trustcheck/internal/metrics"
	"xrpl-trustcheck/internal/trustline"
	"xrpl-trustcheck/internal/util"
)

var errInterrupted = errors.New("interrupted")

type rootFlags struct {
	configPath  string
	envFiles    []string
	input       string
	output      string
	journal     string
	logLevel    string
	consoleLog  bool
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "trustcheck",
		Short:         "Check wallets for an active trust line to one issued asset",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runCheck(cmd, cfg)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&flags.configPath, "config", "c", "", "optional YAML config file")
	f.StringSliceVar(&flags.envFiles, "env-file", []string{".env"}, ".env files to load (missing files are ignored)")
	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "wallet CSV with an 'address' column (env INPUT_CSV)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "result CSV path (env OUTPUT_CSV)")
	cmd.Flags().StringVar(&flags.journal, "journal", "", "append per-wallet outcomes as JSON lines to this file")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "log level (debug shows every trust line)")
	cmd.Flags().BoolVar(&flags.consoleLog, "console-log", true, "human readable log output")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	cmd.AddCommand(newConfigCmd(&flags))
	return cmd
}

// resolveConfig layers the YAML file, .env files, the environment and flags, in that order.
func resolveConfig(cmd *cobra.Command, flags rootFlags) (*config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := config.LoadDotEnv(flags.envFiles...); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	cfg.ApplyEnv(os.Getenv)

	changed := cmd.Flags().Changed
	if changed("input") {
		cfg.Files.InputCSV = flags.input
	}
	if changed("output") {
		cfg.Files.OutputCSV = flags.output
	}
	if changed("journal") {
		cfg.Files.JournalPath = flags.journal
	}
	if changed("log-level") {
		cfg.App.LogLevel = flags.logLevel
	}
	if changed("metrics-addr") {
		cfg.App.MetricsAddr = flags.metricsAddr
	}
	// Without a config file the flag default decides.
	if f := cmd.Flags().Lookup("console-log"); f != nil && (f.Changed || flags.configPath == "") {
		cfg.App.LogConsole = flags.consoleLog
	}
	cfg.FillDefaults()
	return cfg, nil
}

func runCheck(cmd *cobra.Command, cfg *config.Config) error {
	log := util.NewLogger(cmd.ErrOrStderr(), cfg.App.LogLevel, cfg.App.LogConsole)

	if cfg.App.MetricsAddr != "" {
		srv := metrics.Serve(cfg.App.MetricsAddr)
		defer srv.Close()
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	progress := func(done, total int, out trustline.Outcome) {
		mark := "❌"
		if out.HasTrustline() {
			mark = "✅"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] Wallet: %s - Trustline: %s\n", done, total, out.Address, mark)
	}

	start := time.Now()
	res, err := app.Run(ctx, cfg, app.Deps{
		Log:      log,
		Console:  cmd.OutOrStdout(),
		Progress: progress,
	})
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", errInterrupted, err)
		}
		log.Error().Err(err).Msg("trust line check failed")
		return err
	}
	log.Info().
		Str("run_id", res.RunID).
		Int("wallets", res.Summary.Total).
		Int("with_trustline", res.Summary.WithTrustline).
		Dur("elapsed", time.Since(start)).
		Msg("trust line check complete")
	return nil
}
