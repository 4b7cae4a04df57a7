// Package cli defines the cxsh command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cxsh",
	Short: "Interactive shell for API connections and agentic workflows",
	Long:  "cxsh compiles API specifications into connections, executes actions against them, and runs goal-driven agent sessions with human confirmation at every step.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
