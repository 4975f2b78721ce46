package cmd

import (
	"fmt"
	neturl "net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mrleepee/ml-console/packages/core/config"
	"github.com/mrleepee/ml-console/packages/http"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	formFieldFlag string
	rawBodyFlag   bool
	watchFlag     bool
)

var evalCmd = &cobra.Command{
	Use:   "eval <url> <file>",
	Short: "POST a query file to an eval endpoint",
	Long: `POST the contents of a query file (XQuery or JavaScript) to a
server eval endpoint. By default the file is form-encoded under the
"xquery" field, the shape MarkLogic's eval endpoints expect; --raw
sends the file bytes verbatim.

Examples:
  mlconsole eval http://localhost:8000/v1/eval query.xqy -u admin -p admin
  mlconsole eval http://localhost:8000/v1/eval query.xqy --watch
  mlconsole eval http://localhost:8000/ingest payload.xml --raw -H "Content-Type: application/xml"`,
	Args: cobra.ExactArgs(2),
	RunE: evalCommand,
}

func init() {
	addRequestFlags(evalCmd)
	evalCmd.Flags().StringVar(&formFieldFlag, "form-field", "xquery", "Form field name the file is encoded under")
	evalCmd.Flags().BoolVar(&rawBodyFlag, "raw", false, "Send the file contents as the body verbatim")
	evalCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-send whenever the file changes")
}

func evalCommand(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	url, file := args[0], args[1]
	client := newClient(cfg)

	if err := evalOnce(cmd, cfg, client, url, file); err != nil {
		return err
	}

	if !watchFlag {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops
	// a watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", file, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching %s for changes... (press Ctrl+C to stop)\n", file)

	var debounceTimer *time.Timer
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(file) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "\nFile changed: %s\n\n", file)
				if err := evalOnce(cmd, cfg, client, url, file); err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}

func evalOnce(cmd *cobra.Command, cfg *config.Config, client *http.Client, url, file string) error {
	contents, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read query file: %w", err)
	}

	headers, err := parseHeaderFlags(headersFlag)
	if err != nil {
		return err
	}

	body := string(contents)
	if !rawBodyFlag {
		body = formFieldFlag + "=" + neturl.QueryEscape(body)
		if headers == nil {
			headers = make(map[string]string)
		}
		if _, ok := headers["Content-Type"]; !ok {
			headers["Content-Type"] = "application/x-www-form-urlencoded"
		}
	}

	req := &http.Request{
		Method:   "POST",
		URL:      url,
		Headers:  headers,
		Body:     body,
		Username: cfg.Username,
		Password: cfg.Password,
	}

	formatter := newFormatter(cfg)
	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		if watchFlag {
			// Keep watching; the next save may hit a recovered server.
			formatter.FormatError(err)
			return nil
		}
		formatter.FormatError(err)
		os.Exit(ExitRequestFailure)
	}

	recordHistory(cfg, req, resp.Status, resp.Success, duration)
	formatter.FormatResponse(req, resp, duration.Milliseconds())
	return nil
}
