package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ytpicker",
	Short: "video quality picker",
	Long:  "ytpicker serves the quality picker page and API, and drives the fetch/select/download workflow from a terminal.",
}

// Execute runs the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
