package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mandalnilabja/chatrelay/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "chatrelay",
	Short: "Streaming chat gateway with multi-provider failover",
	Long: `chatrelay accepts chat conversations on POST /chat and streams the reply
back as server-sent events, taken from the first of several upstream LLM
providers that answers.

Configuration is read from the environment (and an optional .env file),
then from config.toml in the data directory.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	addServeFlags(rootCmd)
}
