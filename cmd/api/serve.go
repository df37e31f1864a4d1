package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mandalnilabja/chatrelay/internal/app"
	"github.com/mandalnilabja/chatrelay/internal/config"
)

var serveFlags struct {
	port       string
	configPath string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway",
	Long: `Start the HTTP gateway and serve until interrupted.

Flags override the environment, which overrides config.toml.`,
	RunE: runServe,
}

func init() {
	addServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&serveFlags.port, "port", "p", "", "port to listen on (overrides PORT)")
	cmd.Flags().StringVarP(&serveFlags.configPath, "config", "c", "", "config file path (default <data dir>/config.toml)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveFlags.configPath != "" {
		config.SetConfigPath(serveFlags.configPath)
	} else if err := config.EnsureConfigFile(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not create config file: %v\n", err)
	}

	cfg := config.Load()
	if serveFlags.port != "" {
		cfg.ServerPort = ":" + strings.TrimPrefix(serveFlags.port, ":")
	}

	logger := setupLogger(cfg)

	missing, warnings := cfg.Validate()
	if len(missing) > 0 {
		logger.Warn("Missing environment variables", "missing", missing)
		logger.Info("API will start but some services may fail")
	}
	for _, w := range warnings {
		logger.Warn(w)
	}

	if cfg.DBPath != "" && cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.RequireAuth {
		logger.Info("Authentication enabled", "public_keys", len(cfg.PublicAPIKeys))
	} else {
		logger.Warn("Authentication is DISABLED - API is public without auth")
	}

	printStartupBanner(cfg, a)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.Run(ctx)
}
