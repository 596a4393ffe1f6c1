package main

import (
	"os"

	"github.com/wonny/dqs/cmd/dqs/commands"
)

// main is the entry point for the DQS CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
