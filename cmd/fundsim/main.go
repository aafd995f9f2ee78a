package main

import (
	"os"

	"github.com/wonny/fundsim/cmd/fundsim/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
