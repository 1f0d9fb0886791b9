package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Rrens/chat-client/internal/api"
	"github.com/Rrens/chat-client/internal/config"
	"github.com/Rrens/chat-client/internal/logger"
	"github.com/Rrens/chat-client/internal/repository"
	"github.com/Rrens/chat-client/internal/store"
)

var (
	configPath string
	verbose    bool

	app *App
)

// App is everything a command needs, built once per invocation
type App struct {
	cfg    *config.Config
	client *api.Client
	stores *store.Stores
	nav    *terminalNavigator

	closers []func() error
}

var rootCmd = &cobra.Command{
	Use:           "chatcli",
	Short:         "Command-line client for the chat, knowledge and project backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.CommandPath())
		if err != nil {
			return err
		}
		app = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			app.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./configs/config.yaml, or $CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	// .env is optional
	for _, p := range []string{".env", "../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		if app != nil {
			app.Close()
		}
		os.Exit(1)
	}
}

func newApp(commandPath string) (*App, error) {
	if configPath != "" {
		os.Setenv("CONFIG_PATH", configPath)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logCloser, err := logger.Setup(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	a := &App{cfg: cfg, closers: []func() error{logCloser.Close}}

	tokens, closeTokens, err := repository.NewTokenStore(context.Background(), cfg.Storage)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open token storage: %w", err)
	}
	a.closers = append(a.closers, closeTokens)

	a.nav = newTerminalNavigator(commandPath, os.Stderr)
	client, err := api.NewClient(cfg.API.BaseURL, tokens,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLoginPath(cfg.API.LoginPath),
		api.WithNavigator(a.nav),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.client = client

	a.stores = store.New(client, store.Options{
		DefaultModel:   cfg.Chat.DefaultModel,
		SearchLimit:    cfg.Chat.SearchLimit,
		ModelsCacheTTL: cfg.Chat.ModelsCacheTTL,
		Opener:         browserOpener{},
	})

	log.Debug().
		Str("api", cfg.API.BaseURL).
		Str("storage", cfg.Storage.Driver).
		Msg("client ready")
	return a, nil
}

// Close releases storage and log files; safe to call twice
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}

// requireSession restores the session or explains how to get one
func (a *App) requireSession(ctx context.Context) error {
	if !a.stores.Auth.CheckAuth(ctx) {
		return errNotLoggedIn
	}
	return nil
}

var errNotLoggedIn = errors.New("not logged in, run `chatcli login` first")

func printError(err error) {
	msg := err.Error()
	switch api.Classify(err) {
	case api.KindTransport:
		msg = "cannot reach the server: " + err.Error()
	case api.KindUnauthorized:
		msg = "session expired, run `chatcli login`"
	case api.KindValidation:
		msg = api.UserMessage(err, err.Error())
	}
	errColor.Fprintln(os.Stderr, "Error: "+msg)
}
