// Package main provides the command-line client for the dashboard store.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/celerix-dev/mobidash/internal/config"
	"github.com/celerix-dev/mobidash/internal/dashboard"
	"github.com/celerix-dev/mobidash/internal/logging"
	"github.com/celerix-dev/mobidash/pkg/sdk"
	"github.com/spf13/cobra"
)

var (
	dataDir   string
	keyPrefix string
	logLevel  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mobidash",
		Short: "Manage dashboard charts and tables",
		Long: `mobidash manages the charts and tables of a dashboard store.

It talks to the daemon at $MOBIDASH_ADDR when set and reachable, and otherwise
opens the store in --data-dir directly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupWriter(cmd.ErrOrStderr(), logLevel, "text")
			return config.LoadDotEnv()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", envOr("MOBIDASH_DATA_DIR", "./data"), "Data directory of the embedded store")
	rootCmd.PersistentFlags().StringVar(&keyPrefix, "key-prefix", envOr("MOBIDASH_KEY_PREFIX", dashboard.DefaultKeyPrefix), "Prefix of the collection keys")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newChartCmd(), newTableCmd(), newClearCmd(), newThemeCmd(), newMigrateCmd())
	return rootCmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// openStore connects to the daemon or opens the embedded store.
func openStore() (sdk.Handle, error) {
	h, err := sdk.New(dataDir, dashboard.WithKeyPrefix(keyPrefix))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return h, nil
}

// withStore runs fn against an open store and closes it afterwards.
func withStore(fn func(h sdk.Handle) error) error {
	h, err := openStore()
	if err != nil {
		return err
	}
	defer h.Close()
	return fn(h)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeOutput writes data to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
