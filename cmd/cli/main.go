package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every command.
type options struct {
	baseURL  string
	timeout  time.Duration
	identity string
	token    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "energyledger-cli",
		Short:         "Energy ledger CLI tool",
		Long:          `A command line interface for trading energy through the energy ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("ENERGYLEDGER_URL", "http://localhost:8080"), "Base URL of the energy ledger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.identity, "identity", os.Getenv("ENERGYLEDGER_IDENTITY"), "Caller identity sent as X-Participant-ID")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("ENERGYLEDGER_TOKEN"), "Bearer token; takes precedence over --identity")

	rootCmd.AddCommand(
		registerCmd(opts),
		energyCmd(opts),
		buyCmd(opts),
		accountCmd(opts),
		tradesCmd(opts),
		walletCmd(opts),
		ledgerCmd(opts),
		tokenCmd(),
		applyCmd(opts),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
