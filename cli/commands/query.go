package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/erptools/go-applus/cli/internal/ui"
	"github.com/erptools/go-applus/db"
	"github.com/erptools/go-applus/export"
)

var (
	queryRaw   bool
	queryExcel string
	querySheet string
)

var queryCmd = &cobra.Command{
	Use:   "query <sql> [param...]",
	Short: "Run a SQL query",
	Long: `Run a SQL query against the system and print the result.

The statement is sent to the app server for completion first, which
adds client and permission filters. Use --raw to run it against the
database as-is. Positional parameters fill ? placeholders.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := connect()
		if err != nil {
			return err
		}
		defer server.Close()

		ctx := context.Background()
		params := make([]any, 0, len(args)-1)
		for _, a := range args[1:] {
			params = append(params, a)
		}

		stmt := db.Raw(args[0])
		var rows []db.RowMap
		if queryRaw {
			rows, err = db.QueryAll(ctx, server.DB(), stmt, params...)
		} else {
			rows, err = server.QueryAll(ctx, stmt, params...)
		}
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			ui.PrintInfo("no rows")
			return nil
		}

		columns := make([]string, 0, len(rows[0]))
		for c := range rows[0] {
			columns = append(columns, c)
		}
		sort.Strings(columns)

		if queryExcel != "" {
			sheet := export.FromRowMaps(querySheet, columns, rows)
			if err := export.WriteExcel(queryExcel, sheet); err != nil {
				return err
			}
			ui.PrintSuccess("%d row(s) written to %s", len(rows), queryExcel)
			return nil
		}

		table := make([][]string, 0, len(rows))
		for _, r := range rows {
			line := make([]string, len(columns))
			for i, c := range columns {
				if v := r[c]; v != nil {
					line[i] = fmt.Sprint(v)
				}
			}
			table = append(table, line)
		}
		ui.PrintTable(columns, table)
		ui.PrintSuccess("%d row(s)", len(rows))
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <sql>",
	Short: "Show the completed form of a SQL query",
	Long:  "Send a SQL query to the app server for completion and print the result without running it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := connect()
		if err != nil {
			return err
		}
		defer server.Close()

		completed, err := server.CompleteSQL(context.Background(), db.Raw(args[0]))
		if err != nil {
			return err
		}
		fmt.Println(completed)
		return nil
	},
}

func init() {
	queryCmd.Flags().BoolVar(&queryRaw, "raw", false, "skip app server completion")
	queryCmd.Flags().StringVar(&queryExcel, "excel", "", "write the result to an Excel file instead of the terminal")
	queryCmd.Flags().StringVar(&querySheet, "sheet", "Query", "sheet name for --excel")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(completeCmd)
}
