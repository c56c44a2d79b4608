package commands

import (
	"github.com/spf13/cobra"

	"github.com/erptools/go-applus/applus"
	"github.com/erptools/go-applus/cli/internal/ui"
	"github.com/erptools/go-applus/config"
)

var (
	configFile string
	userFlag   string
	envFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "applus",
	Short: "Query and script an APplus ERP system",
	Long: `Query and script an APplus ERP system from the command line.

Connection settings are read from applus.yaml in the working
directory, the home directory or ~/.config/applus, with APPLUS_*
environment variables overriding single values.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default applus.yaml)")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "app server user override")
	rootCmd.PersistentFlags().StringVarP(&envFlag, "env", "e", "", "app server environment override")
}

// Execute is the main entry point for the CLI
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	return cfg.WithUser(userFlag, envFlag), nil
}

func connect() (*applus.Server, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Connect()
}
