package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"transitboard/internal/board"
	"transitboard/internal/config"
	"transitboard/internal/metrics"
	"transitboard/internal/seed"
	"transitboard/internal/simulator"
	"transitboard/internal/store"
)

var (
	flagSeed        string
	flagRandomSeed  uint64
	flagLogLevel    string
	flagRefresh     time.Duration
	flagCycles      int
	flagMaxAttempts int
	flagNoClear     bool
	flagStop        int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "transitboard",
		Short: "Transit board: approaching buses and stop connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, errOut)
			if err != nil {
				return err
			}
			b := app.newBoard(in, out)

			app.logger.Info("starting transit board",
				"session_id", b.SessionID(),
				"refresh", app.cfg.RefreshInterval.String(),
				"max_cycles", app.cfg.MaxCycles,
			)

			if cmd.Flags().Changed("stop") {
				err = b.RunStop(cmd.Context(), flagStop)
			} else {
				err = b.Run(cmd.Context())
			}
			app.shutdown()
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVar(&flagSeed, "seed", "", "YAML seed file (env: SEED_FILE)")
	rootCmd.PersistentFlags().Uint64Var(&flagRandomSeed, "random-seed", 0, "RNG seed for demo coordinates, 0 = time based (env: SEED_RANDOM)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "debug|info|warn|error (env: LOG_LEVEL)")

	rootCmd.Flags().DurationVar(&flagRefresh, "refresh", 0, "wait between refreshes (env: REFRESH_INTERVAL)")
	rootCmd.Flags().IntVar(&flagCycles, "cycles", 0, "stop after N refreshes, 0 = until interrupted (env: MAX_CYCLES)")
	rootCmd.Flags().IntVar(&flagMaxAttempts, "max-attempts", 0, "invalid selections allowed, 0 = unbounded (env: MAX_PROMPT_ATTEMPTS)")
	rootCmd.Flags().BoolVar(&flagNoClear, "no-clear", false, "do not clear the screen between refreshes (env: CLEAR_SCREEN=false)")
	rootCmd.Flags().IntVar(&flagStop, "stop", 0, "show this stop without prompting")

	rootCmd.AddCommand(newBoardCmd(out, errOut))
	rootCmd.AddCommand(newConnectionsCmd(out, errOut))

	return rootCmd
}

type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	metrics *metrics.Metrics
	sim     *simulator.Simulator
}

// setup resolves configuration (flag > env > default), installs the logger
// and seeds a fresh store.
func setup(cmd *cobra.Command, errOut io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(errOut, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	sd, source, err := loadSeed(cfg)
	if err != nil {
		return nil, err
	}

	st := store.New()
	if err := sd.Apply(st); err != nil {
		return nil, fmt.Errorf("apply seed: %w", err)
	}

	stats := st.Stats()
	logger.Debug("store seeded",
		"source", source,
		"stops", stats.Stops,
		"connections", stats.Connections,
		"buses", stats.Buses,
	)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		metrics: metrics.New(),
	}, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("seed") {
		cfg.SeedFile = flagSeed
	}
	if flags.Changed("random-seed") {
		cfg.RandomSeed = flagRandomSeed
	}
	if flags.Changed("log-level") {
		level, ok := config.ParseLogLevel(flagLogLevel)
		if !ok {
			return fmt.Errorf("invalid --log-level %q", flagLogLevel)
		}
		cfg.LogLevel = level
	}
	if flags.Lookup("refresh") != nil && flags.Changed("refresh") {
		cfg.RefreshInterval = flagRefresh
	}
	if flags.Lookup("cycles") != nil && flags.Changed("cycles") {
		cfg.MaxCycles = flagCycles
	}
	if flags.Lookup("max-attempts") != nil && flags.Changed("max-attempts") {
		cfg.MaxPromptAttempts = flagMaxAttempts
	}
	if flags.Lookup("no-clear") != nil && flags.Changed("no-clear") {
		cfg.ClearScreen = !flagNoClear
	}

	return cfg.Validate()
}

func loadSeed(cfg *config.Config) (seed.Seed, string, error) {
	if cfg.SeedFile != "" {
		sd, err := seed.LoadFile(cfg.SeedFile)
		return sd, cfg.SeedFile, err
	}

	rngSeed := cfg.RandomSeed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}
	return seed.Demo(rand.New(rand.NewPCG(rngSeed, rngSeed))), "demo", nil
}

func (a *app) newBoard(in io.Reader, out io.Writer) *board.Board {
	a.sim = simulator.New(a.store, a.metrics, a.logger)
	opts := board.Options{
		CountdownSteps:    a.cfg.CountdownSteps(),
		CountdownStep:     a.cfg.CountdownStep,
		ClearScreen:       a.cfg.ClearScreen,
		MaxCycles:         a.cfg.MaxCycles,
		MaxPromptAttempts: a.cfg.MaxPromptAttempts,
	}
	return board.New(a.store, a.sim, in, out, opts, a.metrics, a.logger)
}

func (a *app) shutdown() {
	summary, err := a.metrics.Summary()
	if err != nil {
		a.logger.Error("failed to gather metrics", "error", err)
	}

	attrs := make([]any, 0, len(summary)*2+2)
	if a.sim != nil {
		attrs = append(attrs, "steps", a.sim.Steps())
	}
	for name, v := range summary {
		attrs = append(attrs, name, v)
	}
	a.logger.Info("shutdown complete", attrs...)
}
