package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datalens/internal/store"
)

func newSQLCmd(opts *rootOptions) *cobra.Command {
	var (
		dbPath string
		load   string
	)

	cmd := &cobra.Command{
		Use:   "sql <statement>",
		Short: "Run a statement against the SQLite row store",
		Long: `Run a statement against the embedded SQLite row store (SQLITE_PATH unless
--db is given). With --load, the file's name/age/city rows replace the
uploaded_data table first, as /upload-dataset does.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if dbPath == "" {
				dbPath = opts.cfg.SQLite.Path
			}

			lite, err := store.OpenSQLite(ctx, dbPath, opts.cfg.SQLite.BusyTimeout)
			if err != nil {
				return err
			}
			rows := store.NewFailover(opts.cfg.Database.PingTimeout, lite)
			defer rows.Close()

			out := cmd.OutOrStdout()
			if load != "" {
				ds, err := loadFile(opts, load)
				if err != nil {
					return err
				}
				m, err := rows.Mirror(ctx, ds)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "loaded %d rows into %s\n", m.Rows, store.Table)
			}

			res, err := rows.Execute(ctx, args[0])
			if err != nil {
				return err
			}
			if !res.IsQuery {
				_, err = fmt.Fprintln(out, res.Message())
				return err
			}
			enc := json.NewEncoder(out)
			for _, r := range res.Rows {
				if err := enc.Encode(r); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database file")
	cmd.Flags().StringVar(&load, "load", "", "mirror this CSV/Excel file before running the statement")
	return cmd
}
