package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erptools/go-applus/cli/internal/ui"
)

var (
	fieldsComputed bool
	fieldsPlain    bool
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <table>",
	Short: "List the fields of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := connect()
		if err != nil {
			return err
		}
		defer server.Close()

		ctx := context.Background()
		table := args[0]

		known, err := server.IsTableKnown(ctx, table)
		if err != nil {
			return err
		}
		if !known {
			return fmt.Errorf("table %s does not exist", table)
		}

		var isComputed *bool
		if fieldsComputed {
			isComputed = &fieldsComputed
		} else if fieldsPlain {
			v := false
			isComputed = &v
		}

		fields, err := server.TableFields(ctx, table, isComputed)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(fields))
		for f := range fields {
			names = append(names, f)
		}
		sort.Strings(names)
		ui.PrintList(names)
		return nil
	},
}

var uniqueCmd = &cobra.Command{
	Use:   "unique <table>",
	Short: "List the unique indexes of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := connect()
		if err != nil {
			return err
		}
		defer server.Close()

		indexes, err := server.UniqueFieldsOfTable(context.Background(), args[0])
		if err != nil {
			return err
		}
		if len(indexes) == 0 {
			ui.PrintInfo("no unique indexes")
			return nil
		}

		names := make([]string, 0, len(indexes))
		for n := range indexes {
			names = append(names, n)
		}
		sort.Strings(names)

		rows := make([][]string, 0, len(names))
		for _, n := range names {
			rows = append(rows, []string{n, strings.Join(indexes[n], ", ")})
		}
		ui.PrintTable([]string{"Index", "Fields"}, rows)
		return nil
	},
}

func init() {
	fieldsCmd.Flags().BoolVar(&fieldsComputed, "computed", false, "only computed columns")
	fieldsCmd.Flags().BoolVar(&fieldsPlain, "plain", false, "only non-computed columns")
	fieldsCmd.MarkFlagsMutuallyExclusive("computed", "plain")

	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(uniqueCmd)
}
