package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mandalnilabja/chatrelay/internal/storage"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an API key",
	Long: `Print a fresh random API key, suitable for MASTER_API_KEY or
PUBLIC_API_KEYS.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := storage.GenerateAPIKey()
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
