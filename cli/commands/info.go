package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/erptools/go-applus/cli/internal/ui"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show system, user and version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := connect()
		if err != nil {
			return err
		}
		defer server.Close()

		ctx := context.Background()
		st := server.ScriptTool

		rows := [][]string{}
		add := func(label string, f func(context.Context) (string, error)) {
			v, err := f(ctx)
			if err != nil {
				v = "-"
			}
			rows = append(rows, []string{label, v})
		}

		add("System", st.SystemName)
		add("User", st.UserName)
		add("Full name", st.UserFullName)
		add("Mandant", st.Mandant)
		add("Mandant name", st.MandantName)
		add("Install path", st.InstallPath)
		add("Server time", st.CurrentDateTime)

		if v, err := st.ServerVersion(ctx); err == nil {
			rows = append(rows, []string{"Version", v.String()})
		}

		ui.PrintTable([]string{"Property", "Value"}, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
