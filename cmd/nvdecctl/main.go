// Command nvdecctl is the companion diagnostics CLI for the VA-API NVDEC
// driver: a vainfo-shaped inspection tool that drives the driver in-process
// (no VA-API client, no real GPU required for the direct-backend fallback
// path) to print its capability matrix and tail its trace log.
//
// Grounded on the teacher's cmd/breeze-agent/main.go cobra root+subcommand
// wiring: a package-level version var, a bare root command, and leaf
// commands that each do one thing and exit.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "nvdecctl",
	Short: "Diagnostics CLI for the VA-API NVDEC driver",
	Long:  `nvdecctl drives the NVDEC VA-API driver in-process to report its capability matrix and tail its trace log.`,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nvdecctl v%s\n", version)
	},
}
