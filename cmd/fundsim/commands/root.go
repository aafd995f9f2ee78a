package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fundsim",
	Short: "Fund strategy backtesting and advisory",
	Long: `fundsim simulates investment strategies over open-end fund NAV
history and evaluates live estimates against the same rules.

Usage:
  go run ./cmd/fundsim [command]

Examples:
  go run ./cmd/fundsim backtest --code 161725 --from 2023-01-01
  go run ./cmd/fundsim advise --code 161725 --lookback 20
  go run ./cmd/fundsim monitor
  go run ./cmd/fundsim api`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
