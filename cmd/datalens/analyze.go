package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datalens/internal/analysis"
	"github.com/JonMunkholm/datalens/internal/chart"
	"github.com/JonMunkholm/datalens/internal/core"
)

func newInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print shape, columns and dtypes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadFile(opts, args[0])
			if err != nil {
				return err
			}
			rows, cols := ds.Shape()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d rows x %d columns\n", ds.Name, rows, cols)
			dtypes := ds.Dtypes()
			for _, c := range ds.Columns() {
				fmt.Fprintf(out, "  %-24s %s\n", c, dtypes[c])
			}
			return nil
		},
	}
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		action string
		column string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Run one analysis action",
		Long: `Run one analysis action and print its result. Charts are written as PNG
to --out; without --out the data URI is printed.

Actions: ` + actionList(),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadFile(opts, args[0])
			if err != nil {
				return err
			}

			cfg := opts.cfg
			d := analysis.NewDispatcher(
				chart.NewGoChart(cfg.Render.Width, cfg.Render.Height),
				chart.NewLimiter(cfg.Render.MaxConcurrent, cfg.Render.MaxWaitTime),
				cfg.Upload.HeadRows,
			)
			result, err := d.Run(cmd.Context(), ds, action, column)
			if err != nil {
				if code := core.MapError(err).Code; code != "" {
					return fmt.Errorf("%w [%s]", err, code)
				}
				return err
			}
			return writeResult(cmd.OutOrStdout(), result, out)
		},
	}
	cmd.Flags().StringVarP(&action, "action", "a", "summary", "analysis action")
	cmd.Flags().StringVarP(&column, "column", "c", "", "column for histogram, boxplot, scatter and value_counts")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write chart PNG to this path")
	return cmd
}

func actionList() string {
	names := make([]string, len(analysis.Tags))
	for i, t := range analysis.Tags {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// writeResult prints text and tables as-is, mappings as sorted JSON and
// charts to pngPath when set.
func writeResult(w io.Writer, result any, pngPath string) error {
	switch v := result.(type) {
	case string:
		if payload, ok := strings.CutPrefix(v, chart.DataURIPrefix); ok && pngPath != "" {
			png, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				return fmt.Errorf("decode chart: %w", err)
			}
			if err := os.WriteFile(pngPath, png, 0o644); err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "wrote %s (%d bytes)\n", pngPath, len(png))
			return err
		}
		_, err := fmt.Fprintln(w, v)
		return err
	case []string:
		for _, s := range v {
			if _, err := fmt.Fprintln(w, s); err != nil {
				return err
			}
		}
		return nil
	case map[string]int:
		return printSorted(w, v)
	case map[string]string:
		return printSorted(w, v)
	default:
		return errors.New("unexpected result type")
	}
}

func printSorted[V any](w io.Writer, m map[string]V) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b, err := json.Marshal(m[k])
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", k, b); err != nil {
			return err
		}
	}
	return nil
}
