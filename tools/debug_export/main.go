// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// debug_export seeds a throwaway in-memory database with the default sample
// data and prints the resulting backup document. It is handy for checking
// what a fresh install exports without touching a real database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/toeirei/stratus/internal/backup"
	"github.com/toeirei/stratus/internal/db"
	"github.com/toeirei/stratus/internal/i18n"
	"github.com/toeirei/stratus/internal/seed"
)

const dsn = "file:debug_export?mode=memory&cache=shared"

func main() {
	if err := run(context.Background(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "debug_export: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, w io.Writer) error {
	i18n.Init("en")
	store, err := db.New("sqlite", dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	data, err := seed.Default()
	if err != nil {
		return err
	}
	if _, err := seed.Apply(ctx, store, data); err != nil {
		return err
	}

	export, err := backup.Create(ctx, store)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "users: %d\n", len(export.Users))
	fmt.Fprintf(w, "virtual machines: %d\n", len(export.VirtualMachines))
	fmt.Fprintf(w, "alerts: %d\n", len(export.Alerts))
	fmt.Fprintf(w, "metrics samples: %d\n", len(export.SystemMetrics))
	fmt.Fprintf(w, "audit entries: %d\n", len(export.AuditLogEntries))

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(export)
}
