// Package main provides the boardctl binary entry point.
// Boardctl is a command-line client for a kanban board service: boards hold
// lists, lists hold cards. All durable state lives server-side; boardctl
// caches it per invocation and keeps only the session token on disk.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"

	"github.com/c360studio/boardctl/api"
	"github.com/c360studio/boardctl/auth"
	"github.com/c360studio/boardctl/board"
	"github.com/c360studio/boardctl/commands"
	"github.com/c360studio/boardctl/config"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "boardctl"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		apiURL   string
		logLevel string
	)

	app := &commands.App{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Kanban board client",
		Long: `Boardctl is a command-line client for a kanban board service.

Boards hold lists, lists hold cards. Log in once and the session is
persisted locally until it expires or you log out.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(app, apiURL, logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		commands.NewLoginCmd(app),
		commands.NewRegisterCmd(app),
		commands.NewLogoutCmd(app),
		commands.NewWhoamiCmd(app),
		commands.NewBoardCmd(app),
		commands.NewListCmd(app),
		commands.NewCardCmd(app),
	)

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// setup loads configuration, configures logging, and wires the stores into
// the app. Runs once before any subcommand.
func setup(app *commands.App, apiURL, logLevel string) error {
	cfg, err := config.NewLoader(slog.Default()).Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Flags override every config layer
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := slog.LevelInfo
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	client := api.NewClient(cfg.API.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithLogger(logger))

	creds := auth.NewCredentialsFile(cfg.Credentials.Path)
	authStore := auth.NewStore(client, creds, auth.WithLogger(logger))
	authStore.Init()

	app.Config = cfg
	app.Client = client
	app.Auth = authStore
	app.Boards = board.NewStore(client, board.WithLogger(logger))
	app.Logger = logger
	app.Out = os.Stdout

	return nil
}
