package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mrleepee/ml-console/packages/core/config"
	"github.com/mrleepee/ml-console/packages/history"
	"github.com/mrleepee/ml-console/packages/http"
	"github.com/mrleepee/ml-console/packages/output"
	"github.com/spf13/cobra"
)

// Flags shared by the request-sending commands. Registered per command
// so each FlagSet owns its help text, but backed by the same vars.
var (
	configFlag    string
	headersFlag   []string
	dataFlag      string
	dataFileFlag  string
	userFlag      string
	passwordFlag  string
	timeoutFlag   int
	insecureFlag  bool
	proxyFlag     string
	verboseFlag   bool
	noColorFlag   bool
	historyDBFlag string
)

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&headersFlag, "header", "H", nil, `Request header as "Name: value" (repeatable)`)
	cmd.Flags().StringVarP(&userFlag, "user", "u", "", "Username for auth negotiation")
	cmd.Flags().StringVarP(&passwordFlag, "password", "p", "", "Password for auth negotiation")
	cmd.Flags().IntVar(&timeoutFlag, "timeout", 0, "Request timeout in milliseconds")
	cmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", false, "Skip TLS certificate validation")
	cmd.Flags().StringVar(&proxyFlag, "proxy", "", "Proxy URL")
	cmd.Flags().StringVar(&configFlag, "config", "", "Path to config file")
	cmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show response headers")
	cmd.Flags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&historyDBFlag, "history-db", "", "Record requests to this sqlite file")
}

func addBodyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&dataFlag, "data", "d", "", "Request body")
	cmd.Flags().StringVar(&dataFileFlag, "data-file", "", "Read the request body from a file")
}

// resolveConfig loads the config file and layers the CLI flags on top.
func resolveConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, err
	}

	overrides := &config.Config{
		Timeout:     timeoutFlag,
		Proxy:       proxyFlag,
		Username:    userFlag,
		Password:    passwordFlag,
		HistoryPath: historyDBFlag,
	}
	if insecureFlag {
		overrides.ValidateSSL = config.BoolPtr(false)
	}
	if verboseFlag {
		overrides.Verbose = config.BoolPtr(true)
	}
	if noColorFlag {
		overrides.NoColor = config.BoolPtr(true)
	}

	return cfg.Merge(overrides), nil
}

func newClient(cfg *config.Config) *http.Client {
	opts := []http.ClientOption{
		http.WithValidateSSL(cfg.GetValidateSSL()),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, http.WithTimeout(time.Duration(cfg.Timeout)*time.Millisecond))
	}
	if cfg.Proxy != "" {
		opts = append(opts, http.WithProxy(cfg.Proxy))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, http.WithDefaultHeaders(cfg.Headers))
	}
	return http.NewClient(opts...)
}

func newFormatter(cfg *config.Config) *output.ConsoleFormatter {
	return output.NewConsoleFormatter(
		output.WithVerbose(cfg.GetVerbose()),
		output.WithNoColor(cfg.GetNoColor()),
	)
}

// parseHeaderFlags turns repeated "Name: value" flags into a map,
// last write wins.
func parseHeaderFlags(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(flags))
	for _, h := range flags {
		name, value, found := strings.Cut(h, ":")
		if !found || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", h)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers, nil
}

// resolveBody returns the request body from --data or --data-file.
func resolveBody() (string, error) {
	if dataFileFlag != "" {
		data, err := os.ReadFile(dataFileFlag)
		if err != nil {
			return "", fmt.Errorf("failed to read body file: %w", err)
		}
		return string(data), nil
	}
	return dataFlag, nil
}

// recordHistory appends the call to the configured sqlite log. A
// recording failure is reported but never fails the request.
func recordHistory(cfg *config.Config, req *http.Request, status int, success bool, duration time.Duration) {
	if cfg.HistoryPath == "" {
		return
	}

	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return
	}
	defer store.Close()

	err = store.Record(&history.Entry{
		Method:   req.Method,
		URL:      req.URL,
		Status:   status,
		Success:  success,
		Duration: duration,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}
