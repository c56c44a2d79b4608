package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erptools/go-applus/cli/internal/ui"
)

var (
	sysconfType string
	sysconfSep  string
)

var sysconfCmd = &cobra.Command{
	Use:   "sysconf <module> <name>",
	Short: "Read a system configuration value",
	Long: `Read a system configuration value, e.g.

    applus sysconf STAMM LAND
    applus sysconf --type int EINKAUF MAXPOS
    applus sysconf --type list --sep ";" VERKAUF SPRACHEN`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := connect()
		if err != nil {
			return err
		}
		defer server.Close()

		ctx := context.Background()
		module, name := args[0], args[1]

		switch strings.ToLower(sysconfType) {
		case "string":
			v, err := server.SysConf.GetString(ctx, module, name, false)
			if err != nil {
				return err
			}
			fmt.Println(v)
		case "int":
			v, err := server.SysConf.GetInt(ctx, module, name, false)
			if err != nil {
				return err
			}
			fmt.Println(v)
		case "double":
			v, err := server.SysConf.GetDouble(ctx, module, name, false)
			if err != nil {
				return err
			}
			fmt.Println(v)
		case "bool":
			v, err := server.SysConf.GetBoolean(ctx, module, name, false)
			if err != nil {
				return err
			}
			fmt.Println(v)
		case "list":
			v, err := server.SysConf.GetList(ctx, module, name, sysconfSep, false)
			if err != nil {
				return err
			}
			ui.PrintList(v)
		default:
			return fmt.Errorf("unknown type %q, want string, int, double, bool or list", sysconfType)
		}
		return nil
	},
}

var nextNumberCmd = &cobra.Command{
	Use:   "next-number <object>",
	Short: "Draw the next free number for a business object",
	Long:  "Draw the next free number for a business object, e.g. the next order number. The number is consumed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := connect()
		if err != nil {
			return err
		}
		defer server.Close()

		n, err := server.NextNumber(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

func init() {
	sysconfCmd.Flags().StringVarP(&sysconfType, "type", "t", "string", "value type: string, int, double, bool or list")
	sysconfCmd.Flags().StringVar(&sysconfSep, "sep", ",", "separator for --type list")

	rootCmd.AddCommand(sysconfCmd)
	rootCmd.AddCommand(nextNumberCmd)
}
