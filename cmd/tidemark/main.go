package main

import (
	"os"

	"github.com/wonny/tidemark/cmd/tidemark/commands"
)

// main is the entry point for the Tidemark CLI
// ⭐ Unified CLI entry point: go run ./cmd/tidemark [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
