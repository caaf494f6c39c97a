package main

import (
	"os"

	"github.com/kiosk404/scrivener/internal/scrivctl/cmd"
)

func main() {
	command := cmd.NewDefaultScrivCtlCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
