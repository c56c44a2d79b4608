package commands

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/erptools/go-applus/cli/internal/ui"
	"github.com/erptools/go-applus/duplicate"
)

var (
	dupAplan  bool
	dupStueli bool
	dupYes    bool
)

var duplicateCmd = &cobra.Command{
	Use:   "duplicate <artikel> [new-number]",
	Short: "Duplicate an article",
	Long: `Duplicate an article including its characteristics and, on
request, its routing and bill of materials. When no new number is
given, the next free article number is drawn.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := connect()
		if err != nil {
			return err
		}
		defer server.Close()

		ctx := context.Background()
		old := args[0]

		art, err := duplicate.LoadArtikel(ctx, server, old, nil, dupAplan, dupStueli)
		if err != nil {
			return err
		}
		if art == nil {
			return fmt.Errorf("article %s does not exist", old)
		}

		var next string
		if len(args) > 1 {
			next = args[1]
		} else {
			next, err = server.NextNumber(ctx, "artikel")
			if err != nil {
				return err
			}
		}

		if !dupYes {
			confirmed := false
			prompt := &survey.Confirm{
				Message: fmt.Sprintf("Duplicate %s as %s?", old, next),
			}
			if err := survey.AskOne(prompt, &confirmed); err != nil {
				return err
			}
			if !confirmed {
				ui.PrintWarning("aborted, nothing inserted")
				return nil
			}
		}

		art.SetFields(map[string]any{"artikel": next})
		ids, err := art.Insert(ctx, server)
		if err != nil {
			return err
		}

		ui.PrintSuccess("created %s", next)
		for _, table := range ids.Tables() {
			ui.PrintInfo("%s: %d record(s)", table, len(ids.Table(table)))
		}
		return nil
	},
}

func init() {
	duplicateCmd.Flags().BoolVar(&dupAplan, "aplan", false, "also duplicate the routing")
	duplicateCmd.Flags().BoolVar(&dupStueli, "stueli", false, "also duplicate the bill of materials")
	duplicateCmd.Flags().BoolVarP(&dupYes, "yes", "y", false, "do not ask for confirmation")

	rootCmd.AddCommand(duplicateCmd)
}
