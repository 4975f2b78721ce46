package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrleepee/ml-console/packages/core/config"
	"github.com/mrleepee/ml-console/packages/history"
)

var historyLimitFlag int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the recorded request log",
	Long: `Inspect requests recorded to the sqlite history log. Recording
happens when historyPath is set in the config file or --history-db is
passed to send, eval, or bench.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded requests, newest first",
	RunE:  historyListCommand,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded requests",
	RunE:  historyClearCommand,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDBFlag, "history-db", "", "Path to the sqlite history file")
	historyCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file")
	historyCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	historyListCmd.Flags().IntVarP(&historyLimitFlag, "limit", "l", 50, "Maximum entries to show")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
}

// historyConfig resolves config and requires a history path.
func historyConfig() *config.Config {
	cfg, err := resolveConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(ExitConfigError)
	}
	if cfg.HistoryPath == "" {
		fmt.Fprintln(os.Stderr, "config error: no history file configured (set historyPath in .mlconsole.yml or pass --history-db)")
		os.Exit(ExitConfigError)
	}
	return cfg
}

func historyListCommand(cmd *cobra.Command, args []string) error {
	cfg := historyConfig()

	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(historyLimitFlag)
	if err != nil {
		return err
	}

	newFormatter(cfg).FormatHistory(entries)
	return nil
}

func historyClearCommand(cmd *cobra.Command, args []string) error {
	cfg := historyConfig()

	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
	return nil
}
