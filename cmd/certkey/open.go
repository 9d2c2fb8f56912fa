package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open [envelope]",
	Short: "Check that an envelope decrypts with the master key",
	Args:  cobra.ExactArgs(1),
	RunE:  openCmdRun,
}

type openFlags struct {
	reveal bool
}

var openArgs openFlags

func init() {
	openCmd.Flags().BoolVar(&openArgs.reveal, "reveal", false,
		"Print the decrypted password instead of a confirmation.")
	rootCmd.AddCommand(openCmd)
}

func openCmdRun(cmd *cobra.Command, args []string) error {
	svc, err := encryptionService()
	if err != nil {
		return err
	}

	password, err := svc.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open envelope: %w", err)
	}

	out := fmt.Sprintf("ok (%d bytes)", len(password))
	if openArgs.reveal {
		out = password
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
