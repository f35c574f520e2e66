package main

import (
	"os"

	"github.com/wonny/riskbadge/cmd/riskbadge/commands"
)

// main is the entry point for the riskbadge CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/riskbadge [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
