// Package main provides the entry point for the happy CLI.
package main

import (
	"fmt"
	"os"

	"github.com/shayne/happy/cmd/happy/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
