// Budsctl is a command line client for Samsung Galaxy Buds Pro earbuds.
//
// It speaks the earbuds' proprietary binary protocol over a Bluetooth
// RFCOMM connection and exposes the common operations: reading status
// and battery, switching noise controls, configuring the touchpad and
// equalizer, finding lost earbuds, and watching live status updates.
// The earbuds must already be paired with the host.
//
// Usage:
//
//	budsctl [command] [flags]
//
// See 'budsctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/galaxybuds/budspro/internal/logging"
	"github.com/galaxybuds/budspro/internal/version"
)

func main() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "budsctl",
	Short: "Galaxy Buds Pro Control Utility",
	Long: `A command line client for Samsung Galaxy Buds Pro earbuds.

Connects to already-paired earbuds over Bluetooth RFCOMM and provides
status readout, noise control switching, touchpad and equalizer
configuration, find-my-earbuds, and live status monitoring.

The earbuds' Bluetooth address is taken from --address, falling back
to the default recorded in the config file from the last connection.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagLogLevel != "" {
			return logging.Initialize(flagLogLevel)
		}
		return logging.InitializeFromEnv()
	},
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
		fmt.Printf("budsctl %s\n", version.Full())
	},
}
