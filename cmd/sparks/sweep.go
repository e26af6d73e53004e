package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired cache entries",
	Long:  `Removes persistent cache entries older than the stale window.`,
	Args:  cobra.NoArgs,
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	if sweepService == nil {
		return errors.New("sweep service not configured")
	}

	n, err := sweepService.Sweep(cmd.Context())
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries.\n", n)
	return nil
}
