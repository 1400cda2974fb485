package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/celerix-dev/mobidash/pkg/sdk"
	"github.com/spf13/cobra"
)

var (
	importSheet  string
	exportFormat string
	exportOutput string
	saveChart    bool
)

func newTableCmd() *cobra.Command {
	tableCmd := &cobra.Command{
		Use:   "table",
		Short: "List, import, export and chart tables",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(h sdk.Handle) error {
				return printJSON(cmd.OutOrStdout(), h.GetAllTables())
			})
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print one table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(h sdk.Handle) error {
				table, err := h.GetTableByID(args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), table)
			})
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file.xlsx|file.json>",
		Short: "Import a workbook sheet or a JSON table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(args[0])
			if err != nil {
				return err
			}
			return withStore(func(h sdk.Handle) error {
				table, err := h.ImportTable(cmd.Context(), filepath.Base(args[0]), content, importSheet)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%q, %d columns, %d rows)\n",
					table.ID, table.Title, len(table.Headers), len(table.Rows))
				return nil
			})
		},
	}
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "Worksheet to import (default: the first one)")

	exportCmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a table as JSON or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := exportFormat
			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(exportOutput)), ".")
			}
			if format == "" {
				format = "json"
			}
			if format != "json" && format != "xlsx" {
				return fmt.Errorf("invalid format: %s (must be json or xlsx)", format)
			}
			return withStore(func(h sdk.Handle) error {
				data, err := h.ExportTable(cmd.Context(), args[0], format)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), exportOutput, data)
			})
		},
	}
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default: stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Export format: json, xlsx (default: from --output, else json)")

	toChartCmd := &cobra.Command{
		Use:   "to-chart <id>",
		Short: "Derive a bar chart from a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(h sdk.Handle) error {
				chart, err := h.TableToChart(cmd.Context(), args[0], saveChart)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), chart)
			})
		},
	}
	toChartCmd.Flags().BoolVar(&saveChart, "save", false, "Store the derived chart")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(h sdk.Handle) error {
				if err := h.DeleteTable(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			})
		},
	}

	tableCmd.AddCommand(listCmd, getCmd, importCmd, exportCmd, toChartCmd, deleteCmd)
	return tableCmd
}
