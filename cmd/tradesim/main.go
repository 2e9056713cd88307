// Command tradesim plays and serves trade-towns games.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/talgya/trade-towns/internal/api"
	"github.com/talgya/trade-towns/internal/config"
	"github.com/talgya/trade-towns/internal/engine"
	"github.com/talgya/trade-towns/internal/persistence"
	"github.com/talgya/trade-towns/internal/world"
)

var (
	configFile string
	seed       string
	generate   bool
	logLevel   string

	turns int
	quiet bool

	port     int
	adminKey string
	interval time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tradesim",
		Short: "Turn-based multi-town trading simulation",
		Long: `tradesim plays a deterministic trading game between towns.
The same configuration and seed always replay the same game.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML game config (defaults built in)")
	rootCmd.PersistentFlags().StringVarP(&seed, "seed", "s", "", "Game seed (overrides the config; random when unset)")
	rootCmd.PersistentFlags().BoolVarP(&generate, "generate", "g", false, "Generate towns even when the config lists some")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Play a number of turns and print the outcome",
		RunE:  runGame,
	}
	runCmd.Flags().IntVarP(&turns, "turns", "t", 10, "Turns to play")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the final town table")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game over HTTP with a websocket turn feed",
		RunE:  serveGame,
	}
	serveCmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP port")
	serveCmd.Flags().StringVar(&adminKey, "admin-key", os.Getenv("TRADESIM_ADMIN_KEY"), "Bearer token for POST /api/v1/turn")
	serveCmd.Flags().DurationVar(&interval, "interval", 0, "Play a turn every interval (0 = only on POST /api/v1/turn)")

	rootCmd.AddCommand(runCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid --log-level %q", level)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return nil
}

// newGame loads the config and builds a simulation and an empty journal
// holding the opening snapshot.
func newGame() (*engine.Simulation, *persistence.Journal, error) {
	f, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	cfg, state, err := config.Build(f, config.BuildOptions{Seed: seed, Generate: generate})
	if err != nil {
		return nil, nil, err
	}
	sim, err := engine.NewSimulation(cfg, state)
	if err != nil {
		return nil, nil, err
	}

	journal, err := persistence.OpenMemory()
	if err != nil {
		return nil, nil, err
	}
	if err := journal.RecordState(state); err != nil {
		journal.Close()
		return nil, nil, err
	}
	if err := journal.SaveMeta("seed", state.RNGSeed); err != nil {
		journal.Close()
		return nil, nil, err
	}
	slog.Info("game ready", "seed", state.RNGSeed, "towns", len(state.Towns), "config", configFile)
	return sim, journal, nil
}

func runGame(cmd *cobra.Command, args []string) error {
	if turns < 1 {
		return fmt.Errorf("--turns must be at least 1, got %d", turns)
	}
	sim, journal, err := newGame()
	if err != nil {
		return err
	}
	defer journal.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		printHeader(sim.State())
	}

	eng := engine.NewEngine(sim, turns)
	eng.OnTurn = func(r engine.TurnReport, next world.GameState) {
		if err := journal.RecordTurn(r, next); err != nil {
			slog.Error("journal turn failed", "turn", r.Turn, "error", err)
		}
		if !quiet {
			printTurn(r)
		}
	}
	played, err := eng.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	printTowns(sim.State())
	printSummary(sim.State(), journal, played)
	return nil
}

func serveGame(cmd *cobra.Command, args []string) error {
	sim, journal, err := newGame()
	if err != nil {
		return err
	}
	defer journal.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := api.NewHub()
	go hub.Run(ctx)

	srv := &api.Server{Sim: sim, Journal: journal, Hub: hub, Port: port, AdminKey: adminKey}
	httpSrv := srv.HTTPServer()

	errc := make(chan error, 2)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	if interval > 0 {
		eng := engine.NewEngine(sim, 0)
		eng.Interval = interval
		eng.Step = srv.Advance
		go func() {
			if _, err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errc <- err
			}
		}()
	}

	color.Cyan("Serving %s on :%d (seed %s)", "trade-towns", port, sim.State().RNGSeed)

	select {
	case <-ctx.Done():
	case err = <-errc:
		slog.Error("server stopping", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := httpSrv.Shutdown(shutdownCtx); serr != nil {
		slog.Warn("HTTP shutdown", "error", serr)
	}
	return err
}
