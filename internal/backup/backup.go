// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup reads and writes zstd-compressed JSON dumps of the store
// and can ship them to S3.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/stratus/internal/db"
	"github.com/toeirei/stratus/internal/model"
)

// Suffix is appended to backup file names that lack it.
const Suffix = ".zst"

// ErrSchemaVersion is returned when a backup was written by a newer release.
var ErrSchemaVersion = errors.New("unsupported backup schema version")

// DefaultFilename returns stratus-backup-YYYY-MM-DD.json.zst for now.
func DefaultFilename(now time.Time) string {
	return fmt.Sprintf("stratus-backup-%s.json%s", now.Format("2006-01-02"), Suffix)
}

// EnsureSuffix appends ".zst" unless name already ends with it.
func EnsureSuffix(name string) string {
	if strings.HasSuffix(name, Suffix) {
		return name
	}
	return name + Suffix
}

// Write encodes data as indented JSON through a zstd encoder.
func Write(w io.Writer, data *model.BackupData) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("could not encode json to zstd writer: %w", err)
	}
	return zw.Close()
}

// Read decodes a backup written by Write.
func Read(r io.Reader) (*model.BackupData, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()

	var data model.BackupData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("could not decode json from zstd reader: %w", err)
	}
	if data.SchemaVersion > model.BackupSchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrSchemaVersion, data.SchemaVersion)
	}
	return &data, nil
}

// WriteFile writes data to name, replacing any existing file.
func WriteFile(name string, data *model.BackupData) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return Write(f, data)
}

// ReadFile reads a backup from name.
func ReadFile(name string) (*model.BackupData, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Create exports the whole store.
func Create(ctx context.Context, store db.Store) (*model.BackupData, error) {
	data, err := store.ExportDataForBackup(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return data, nil
}

// Restore loads data into store. full wipes every table first; otherwise
// rows are integrated and existing ones are kept.
func Restore(ctx context.Context, store db.Store, data *model.BackupData, full bool) error {
	if full {
		return store.ImportDataFromBackup(ctx, data)
	}
	return store.IntegrateDataFromBackup(ctx, data)
}
