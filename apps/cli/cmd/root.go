package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "mlconsole",
	Short: "HTTP console for servers behind Digest or Basic auth.",
	Long: `mlconsole sends HTTP requests to servers that demand Digest or
Basic authentication without making you care which. It probes the
server, answers a Digest challenge when one comes back, and falls back
to Basic when the probe cannot reach the server at all.`,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
