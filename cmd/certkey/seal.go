package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sealCmd = &cobra.Command{
	Use:   "seal [password]",
	Short: "Encrypt a certificate password for the companies.cert_key column",
	Args:  cobra.ExactArgs(1),
	RunE:  sealCmdRun,
}

func init() {
	rootCmd.AddCommand(sealCmd)
}

func sealCmdRun(cmd *cobra.Command, args []string) error {
	svc, err := encryptionService()
	if err != nil {
		return err
	}

	envelope, err := svc.Seal(args[0])
	if err != nil {
		return fmt.Errorf("failed to seal password: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), envelope)
	return err
}
