// Command itemcode inspects, normalizes and stashes item codes.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/udisondev/itemcode/internal/catalog"
	"github.com/udisondev/itemcode/internal/config"
	"github.com/udisondev/itemcode/internal/itemcode"
	"github.com/udisondev/itemcode/internal/zdict"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	root := newRootCmd(&app{})
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	return root.ExecuteContext(ctx)
}

// app is the state shared by all subcommands, filled in before any of them runs.
type app struct {
	configPath string
	game       string
	logLevel   string

	cfg config.Config
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "itemcode",
		Short:         "Inspect and manage Borderlands item codes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $"+config.PathEnv+" or "+config.DefaultPath+")")
	flags.StringVar(&a.game, "game", "", "game: bl2, tps or aodk (overrides config)")
	flags.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(
		newInspectCmd(a),
		newNormalizeCmd(a),
		newBatchCmd(a),
		newDictCmd(),
		newStashCmd(a),
	)
	return root
}

// load reads the config, applies flag overrides and configures slog.
func (a *app) load() error {
	path := config.Path(a.configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.game != "" {
		cfg.Game = a.game
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	a.cfg = cfg

	// stdout carries command output.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Debug("config loaded", "path", path, "game", cfg.Game, "stash", cfg.Stash.Backend)
	return nil
}

func (a *app) gameOf() (itemcode.Game, error) {
	return itemcode.ParseGame(a.cfg.Game)
}

// inspector builds an Inspector for the configured game and dictionary.
func (a *app) inspector() (*itemcode.Inspector, error) {
	game, err := a.gameOf()
	if err != nil {
		return nil, err
	}

	var opts []itemcode.Option
	if a.cfg.Dictionary.Path != "" {
		dict, err := zdict.Load(a.cfg.Dictionary.Path, a.cfg.Dictionary.Hash)
		if err != nil {
			return nil, err
		}
		opts = append(opts, itemcode.WithDictionary(dict))
	}
	return itemcode.NewInspector(game, opts...)
}

// catalog loads the configured part list, nil when there is none.
func (a *app) catalog() (*catalog.Catalog, error) {
	if a.cfg.Catalog == "" {
		return nil, nil
	}
	return catalog.Load(a.cfg.Catalog)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
