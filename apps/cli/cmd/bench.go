package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mrleepee/ml-console/packages/bench"
)

var (
	benchRequestsFlag    int
	benchConcurrencyFlag int
	benchRateFlag        float64
)

var benchCmd = &cobra.Command{
	Use:   "bench <method> <url>",
	Short: "Repeat a request and report latency percentiles",
	Long: `Send the same request many times and summarize latency. Every
iteration runs the full pipeline, auth negotiation included, so digest
endpoints pay the documented probe round-trip each time.

Examples:
  mlconsole bench GET http://localhost:8002/manage/v2 -n 200 -c 10
  mlconsole bench POST http://localhost:8000/eval -d 'xquery=1+1' -u admin -p admin -n 50 --rate 10`,
	Args: cobra.ExactArgs(2),
	RunE: benchCommand,
}

func init() {
	addRequestFlags(benchCmd)
	addBodyFlags(benchCmd)
	benchCmd.Flags().IntVarP(&benchRequestsFlag, "requests", "n", 100, "Total number of requests")
	benchCmd.Flags().IntVarP(&benchConcurrencyFlag, "concurrency", "c", 1, "Concurrent workers")
	benchCmd.Flags().Float64Var(&benchRateFlag, "rate", 0, "Target requests per second (0 = unpaced)")
}

func benchCommand(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(ExitConfigError)
	}
	formatter := newFormatter(cfg)

	req, err := buildRequest(args[0], args[1], cfg.Username, cfg.Password)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Sending %d requests to %s...\n", benchRequestsFlag, req.URL)

	summary, err := bench.Run(ctx, newClient(cfg), req, bench.Config{
		Requests:    benchRequestsFlag,
		Concurrency: benchConcurrencyFlag,
		Rate:        benchRateFlag,
	})
	if err != nil {
		formatter.FormatError(err)
		os.Exit(ExitRequestFailure)
	}

	formatter.FormatBenchSummary(summary)
	return nil
}
