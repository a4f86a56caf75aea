// Package main is the entry point for the tradeplane CLI.
// The CLI is the terminal tool for interacting with the coordinator API.
package main

import (
	"os"

	"tradeplane/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
