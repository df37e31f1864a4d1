package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"

	"github.com/mandalnilabja/chatrelay/internal/app"
	"github.com/mandalnilabja/chatrelay/internal/config"
	"github.com/mandalnilabja/chatrelay/internal/provider"
	"github.com/mandalnilabja/chatrelay/internal/version"
)

// setupLogger builds the process logger: text by default, zerolog JSON lines
// when LOG_FORMAT=json. DEBUG enables debug level.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	var logger *slog.Logger
	if cfg.LogFormat == "json" {
		zl := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = slog.New(zeroslog.NewHandler(zl, &zeroslog.HandlerOptions{Level: level}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}

	slog.SetDefault(logger)
	return logger
}

func printStartupBanner(cfg *config.Config, a *app.App) {
	title := color.New(color.FgCyan, color.Bold).SprintFunc()
	label := color.New(color.FgHiBlack).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()
	base := "http://localhost" + cfg.ServerPort

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "%s %s\n", title("chatrelay"), version.Version)
	fmt.Fprintln(os.Stderr, strings.Repeat("=", 48))
	fmt.Fprintf(os.Stderr, "%s    %s/chat\n", label("Chat:"), base)
	fmt.Fprintf(os.Stderr, "%s  %s/health\n", label("Health:"), base)
	fmt.Fprintf(os.Stderr, "%s %s/metrics\n", label("Metrics:"), base)
	fmt.Fprintf(os.Stderr, "%s   %s/admin/keys\n", label("Admin:"), base)
	fmt.Fprintf(os.Stderr, "%s %s (%s)\n", label("Routing:"), strings.Join(provider.Names(a.Providers), ", "), cfg.SelectionStrategy)
	if cfg.RateLimitEnabled {
		fmt.Fprintf(os.Stderr, "%s   %d per %s\n", label("Limit:"), cfg.RateLimitMax, cfg.RateLimitWindow.Round(time.Second))
	}
	if a.Storage != nil {
		fmt.Fprintf(os.Stderr, "%s    %s\n", label("Logs:"), cfg.DBPath)
	}
	if a.MasterKeyGenerated {
		fmt.Fprintf(os.Stderr, "%s\n", warn("MASTER_API_KEY not set: a temporary key was generated (run `chatrelay keygen`)"))
	}
	fmt.Fprintln(os.Stderr, strings.Repeat("=", 48))
	fmt.Fprintln(os.Stderr)
}
