package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var host string

var rootCmd = &cobra.Command{
	Use:   "matchctl",
	Short: "Operate the match control panel from a terminal",
	Long: `A command-line interface for the match control panel: set and run the
countdowns, put a match on air, submit scores and watch the display streams.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:5000", "The host address of the server")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "matchctl: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
