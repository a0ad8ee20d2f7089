// Lyngdorfctl is a command-line controller for Lyngdorf AV processors
// and integrated amplifiers (MP-40/50/60, TDAI-1120/2210/3400).
//
// It speaks the text-based control protocol on TCP port 84: one-shot
// commands for power, volume, mute, source, voicing, focus position,
// audio mode, lipsync and channel trims, plus mDNS discovery, a named
// device registry, and an interactive live monitor.
//
// Usage:
//
//	lyngdorfctl [command] [flags]
//
// See 'lyngdorfctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsoutter/golyngdorf/internal/logging"
	"github.com/jsoutter/golyngdorf/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lyngdorfctl",
	Short: "Control Lyngdorf AV processors from the command line",
	Long: `Control Lyngdorf AV processors and integrated amplifiers.

Connects to the device's text control protocol over TCP and exposes
power, volume, input, RoomPerfect and trim operations, network
discovery, and a live status monitor.

Target a device with --host, or register devices by name with
'lyngdorfctl devices add' and select them with --name.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lyngdorfctl %s\n", version.Full())
	},
}
