// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Stratus.
//
// Usage:
//
//	go run . [flags]
//	./stratus serve
//
// See --help for the available commands.
package main

import (
	"os"

	"github.com/toeirei/stratus/internal/logging"
	"github.com/toeirei/stratus/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("stratus: %v", err)
		os.Exit(1)
	}
}
