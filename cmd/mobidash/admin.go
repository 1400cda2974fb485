package main

import (
	"fmt"

	"github.com/celerix-dev/mobidash/internal/backend"
	"github.com/celerix-dev/mobidash/internal/config"
	"github.com/celerix-dev/mobidash/internal/engine"
	"github.com/celerix-dev/mobidash/pkg/sdk"
	"github.com/spf13/cobra"
)

var (
	clearYes      bool
	migrateFrom   string
	migrateTo     string
	migrateTarget string
)

func newClearCmd() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every chart and table (preferences are kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !clearYes {
				return fmt.Errorf("refusing to clear without --yes")
			}
			return withStore(func(h sdk.Handle) error {
				if err := h.ClearAllData(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm deletion")
	return clearCmd
}

func newThemeCmd() *cobra.Command {
	themeCmd := &cobra.Command{
		Use:   "theme [body-dark|body-ligth|toggle]",
		Short: "Show or change the theme preference",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(h sdk.Handle) error {
				prefs := h.Preferences()
				var err error
				switch {
				case len(args) == 0:
				case args[0] == "toggle":
					prefs, err = h.ToggleTheme()
				default:
					prefs, err = h.SetTheme(args[0])
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), prefs)
			})
		},
	}
	return themeCmd
}

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy every key from one storage backend to another",
		Long: `migrate copies the raw key-value data between backends configured through
the MOBIDASH_* environment, e.g. --from file --to postgres to move a file store
into PostgreSQL, or --from postgres --to file for an offline backup.
--target-dir overrides the data directory of a file destination.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if migrateFrom == migrateTo && migrateTarget == "" {
				return fmt.Errorf("source and destination are both %q", migrateFrom)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			srcCfg := cfg.Storage
			srcCfg.Backend = migrateFrom
			srcCfg.DataDir = dataDir
			src, err := backend.Open(cmd.Context(), srcCfg)
			if err != nil {
				return fmt.Errorf("open source: %w", err)
			}
			defer src.Close()

			dstCfg := cfg.Storage
			dstCfg.Backend = migrateTo
			dstCfg.DataDir = dataDir
			if migrateTarget != "" {
				dstCfg.DataDir = migrateTarget
			}
			dst, err := backend.Open(cmd.Context(), dstCfg)
			if err != nil {
				return fmt.Errorf("open destination: %w", err)
			}
			defer dst.Close()

			n, err := engine.Migrate(src, dst)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d keys from %s to %s\n", n, migrateFrom, migrateTo)
			return nil
		},
	}
	migrateCmd.Flags().StringVar(&migrateFrom, "from", config.BackendFile, "Source backend: file, postgres")
	migrateCmd.Flags().StringVar(&migrateTo, "to", config.BackendPostgres, "Destination backend: file, postgres")
	migrateCmd.Flags().StringVar(&migrateTarget, "target-dir", "", "Data directory of a file destination")
	return migrateCmd
}
