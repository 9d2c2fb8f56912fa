package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/flexprice/fiscal/internal/security"
	"github.com/spf13/cobra"
)

const masterKeyEnv = "FISCAL_VAULT_MASTER_KEY"

var rootCmd = &cobra.Command{
	Use:           "certkey",
	Short:         "Manage the encrypted certificate passwords stored on companies",
	SilenceUsage:  true,
	SilenceErrors: true,
}

type rootFlags struct {
	key string
}

var rootArgs rootFlags

func init() {
	rootCmd.PersistentFlags().StringVar(&rootArgs.key, "key", "",
		"Hex encoded 32 byte master key, defaults to $"+masterKeyEnv+".")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// encryptionService builds the cipher from --key or the environment
func encryptionService() (security.EncryptionService, error) {
	key := rootArgs.key
	if key == "" {
		key = os.Getenv(masterKeyEnv)
	}
	if key == "" {
		return nil, fmt.Errorf("master key is required, set --key or %s", masterKeyEnv)
	}

	raw, err := hex.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("master key is not valid hex: %w", err)
	}
	return security.NewEncryptionServiceWithKey(raw)
}
