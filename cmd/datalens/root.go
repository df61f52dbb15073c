package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datalens/internal/config"
	"github.com/JonMunkholm/datalens/internal/dataset"
	"github.com/JonMunkholm/datalens/internal/logging"
)

type rootOptions struct {
	logLevel string
	cfg      *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "datalens",
		Short: "Inspect and chart CSV/Excel files from the command line",
		Long: `datalens loads a CSV or Excel file the same way the upload endpoint does and
runs one analysis action on it. Settings come from the same environment
variables as the server (RENDER_WIDTH, UPLOAD_MAX_FILE_SIZE, SQLITE_PATH, ...).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, "text"))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	cmd.AddCommand(newInfoCmd(opts), newAnalyzeCmd(opts), newSQLCmd(opts))
	return cmd
}

// loadFile opens path and parses it with the configured size cap.
func loadFile(opts *rootOptions, path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := dataset.Load(f, path, opts.cfg.Upload.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return ds, nil
}
