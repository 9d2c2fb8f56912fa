package main

import (
	"fmt"

	"github.com/flexprice/fiscal/internal/security"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random master key",
	Args:  cobra.NoArgs,
	RunE:  generateCmdRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateCmdRun(cmd *cobra.Command, args []string) error {
	key, err := security.GenerateRandomKey()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
	return err
}
