package main

import (
	"os"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/erptools/go-applus/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
