// Sm1link is a monitor and command console for the SM-1 serial link.
//
// It assembles and decodes the binary frames exchanged between the
// operator station and the master power controllers, tracks per-channel
// statistics, and can author command frames for one- or two-channel
// deployments.
//
// Usage:
//
//	sm1link [command] [flags]
//
// See 'sm1link --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwkim/sm1link/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sm1link",
	Short: "SM-1 serial link monitor and command console",
	Long: `Monitor and command console for the SM-1 serial link.

Decodes the frames the master controllers emit (system voltage, per-module
current and temperature), authors command frames, and serves link state
over HTTP while monitoring.`,
	Version: version.Version,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sm1link %s (commit: %s)\n", version.Version, version.Commit)
	},
}
