package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/celerix-dev/mobidash/internal/render"
	"github.com/celerix-dev/mobidash/pkg/sdk"
	"github.com/celerix-dev/mobidash/pkg/validate"
	"github.com/spf13/cobra"
)

var (
	renderOutput string
	renderFormat string
	renderWidth  int
	renderHeight int
)

func newChartCmd() *cobra.Command {
	chartCmd := &cobra.Command{
		Use:   "chart",
		Short: "List, import, validate and render charts",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(h sdk.Handle) error {
				return printJSON(cmd.OutOrStdout(), h.GetAllCharts())
			})
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print one chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(h sdk.Handle) error {
				chart, err := h.GetChartByID(args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), chart)
			})
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Validate a chart file and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(args[0])
			if err != nil {
				return err
			}
			return withStore(func(h sdk.Handle) error {
				chart, err := h.ImportChart(cmd.Context(), filepath.Base(args[0]), content)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%s, %q)\n", chart.ID, chart.Type, chart.Title)
				return nil
			})
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate <file.json>",
		Short: "Check a chart file without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			var content []byte
			if info.Size() <= validate.MaxFileSize {
				if content, err = os.ReadFile(args[0]); err != nil {
					return err
				}
			}
			def, err := validate.ValidateCompleteChartFile(info, string(content))
			res := validate.NewResult(def, err)
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.Valid {
				return fmt.Errorf("invalid chart file: %s", res.Error)
			}
			return nil
		},
	}

	renderCmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Draw a stored chart as PNG or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := renderFormat
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(renderOutput), ".")
			}
			if _, err := render.ParseFormat(format); err != nil {
				return err
			}
			return withStore(func(h sdk.Handle) error {
				img, err := h.ChartImage(cmd.Context(), args[0], format, renderWidth, renderHeight)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), renderOutput, img)
			})
		},
	}
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file path (default: stdout)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "", "Image format: png, svg (default: from --output, else png)")
	renderCmd.Flags().IntVar(&renderWidth, "width", render.DefaultWidth, "Image width in pixels")
	renderCmd.Flags().IntVar(&renderHeight, "height", render.DefaultHeight, "Image height in pixels")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(h sdk.Handle) error {
				if err := h.DeleteChart(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			})
		},
	}

	chartCmd.AddCommand(listCmd, getCmd, importCmd, validateCmd, renderCmd, deleteCmd)
	return chartCmd
}

// readInput reads a file, refusing anything past the import limit.
func readInput(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if err := validate.ValidateFileSize(info); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
