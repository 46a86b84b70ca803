// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db provides the data access layer for Stratus.
// It hides the underlying database (SQLite, PostgreSQL or MySQL) behind the
// Store interface, backed by a long-lived *bun.DB, and ships the embedded
// schema migrations for every supported engine.
package db // import "github.com/toeirei/stratus/internal/db"

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	// SQL drivers for the supported engines.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var (
	store Store
	//go:embed migrations
	embeddedMigrations embed.FS
	// sqlOpenFunc allows tests to override database opening behavior.
	sqlOpenFunc = sql.Open
)

// New opens a Store for dbType/dsn, runs migrations and makes it the
// package default.
func New(dbType, dsn string) (Store, error) {
	s, err := NewStoreFromDSN(dbType, dsn)
	if err != nil {
		return nil, err
	}
	store = s
	return s, nil
}

// InitDB is New without the return value, for callers that only use the
// package default.
func InitDB(dbType, dsn string) error {
	if _, err := New(dbType, dsn); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	return nil
}

// IsInitialized reports whether the package-level store has been set.
func IsInitialized() bool {
	return store != nil
}

// Default returns the package-level store, or nil before InitDB.
func Default() Store {
	return store
}

// SetDefault replaces the package-level store. Passing nil resets it.
func SetDefault(s Store) {
	store = s
}

// driverName maps a configured database type to its database/sql driver.
func driverName(dbType string) string {
	// The pgx stdlib registers driver name "pgx".
	if dbType == "postgres" {
		return "pgx"
	}
	return dbType
}

// isMemorySQLite reports whether dsn points at an in-memory SQLite database.
func isMemorySQLite(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory") || strings.HasPrefix(dsn, "file::memory:")
}

// sqliteDSN adds the busy timeout and foreign key pragmas unless the caller
// already configured pragmas.
func sqliteDSN(dsn string) string {
	if dsn == ":memory:" || strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// NewStoreFromDSN opens a sql.DB for the given DSN, runs migrations, and
// returns a Store backed by a long-lived *bun.DB.
func NewStoreFromDSN(dbType, dsn string) (Store, error) {
	switch dbType {
	case "sqlite", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported database type for store creation: '%s'", dbType)
	}
	if dbType == "sqlite" {
		dsn = sqliteDSN(dsn)
	}

	start := time.Now()
	sqlDB, err := sqlOpenFunc(driverName(dbType), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Pool defaults are conservative for small deployments and can be tuned
	// through the environment.
	const (
		defaultMaxOpenConns    = 25
		defaultMaxIdleConns    = 25
		defaultConnMaxLifetime = 300
		defaultConnMaxIdle     = 60
	)
	maxOpen := envInt("STRATUS_DB_MAX_OPEN_CONNS", defaultMaxOpenConns)
	maxIdle := envInt("STRATUS_DB_MAX_IDLE_CONNS", defaultMaxIdleConns)
	// Each connection to an in-memory SQLite database would otherwise see its
	// own empty database.
	if dbType == "sqlite" && isMemorySQLite(dsn) {
		maxOpen = 1
		maxIdle = 1
	}
	connMax := time.Duration(envInt("STRATUS_DB_CONN_MAX_LIFETIME_SECONDS", defaultConnMaxLifetime)) * time.Second
	connIdle := time.Duration(envInt("STRATUS_DB_CONN_MAX_IDLE_SECONDS", defaultConnMaxIdle)) * time.Second

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(connMax)
	sqlDB.SetConnMaxIdleTime(connIdle)
	dbLogf("db: opened %s driver in %s (max open=%d, idle=%s, max lifetime=%s)", driverName(dbType), time.Since(start), maxOpen, connIdle, connMax)

	migStart := time.Now()
	if err := RunMigrations(sqlDB, dbType); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	dbLogf("db: migrations for %s completed in %s", dbType, time.Since(migStart))

	return &BunStore{bun: createBunDB(sqlDB, dbType), dbType: dbType}, nil
}

// createBunDB constructs a *bun.DB for the provided *sql.DB and dbType.
func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

// RunMigrations applies the embedded migrations/<dbType>/*.up.sql files that
// are not yet recorded in schema_migrations, each in its own transaction.
func RunMigrations(db *sql.DB, dbType string) error {
	migrationsPath := fmt.Sprintf("migrations/%s", dbType)

	entries, err := fs.ReadDir(embeddedMigrations, migrationsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			dbLogf("db: no migrations embedded for %s", dbType)
			return nil
		}
		return fmt.Errorf("failed to read embedded migrations (%s): %w", migrationsPath, err)
	}

	var ups []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			ups = append(ups, e.Name())
		}
	}
	sort.Strings(ups)

	if err := ensureSchemaMigrationsTable(db, dbType); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	placeholder := func(n int) string {
		if dbType == "postgres" {
			return "$" + strconv.Itoa(n)
		}
		return "?"
	}

	for _, fname := range ups {
		version := strings.TrimSuffix(fname, ".up.sql")

		var exists int
		err := db.QueryRow("SELECT 1 FROM schema_migrations WHERE version = "+placeholder(1), version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check migration version %s: %w", version, err)
		}

		p := path.Join(migrationsPath, fname)
		data, err := embeddedMigrations.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", p, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", version, err)
		}
		for _, stmt := range splitStatements(string(data)) {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to execute migration %s: %w", version, err)
			}
		}
		insert := fmt.Sprintf("INSERT INTO schema_migrations(version, applied_at) VALUES(%s, %s)", placeholder(1), placeholder(2))
		if _, err := tx.Exec(insert, version, time.Now().UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", version, err)
		}
		dbLogf("db: applied migration %s", version)
	}
	return nil
}

// splitStatements splits a migration file on statement-terminating
// semicolons. MySQL rejects multi-statement Exec calls by default.
func splitStatements(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ensureSchemaMigrationsTable creates schema_migrations if missing.
func ensureSchemaMigrationsTable(db *sql.DB, dbType string) error {
	// MySQL cannot index TEXT columns without a length.
	ddl := `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMP)`
	if dbType == "mysql" {
		ddl = `CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(191) PRIMARY KEY, applied_at TIMESTAMP NULL)`
	}
	_, err := db.Exec(ddl)
	return err
}

// RunDBMaintenance performs engine-specific maintenance for dsn: PRAGMA
// optimize, VACUUM, WAL checkpoint and integrity_check on SQLite, VACUUM
// ANALYZE on Postgres and OPTIMIZE TABLE per table on MySQL.
func RunDBMaintenance(ctx context.Context, dbType, dsn string) error {
	if dbType == "sqlite" {
		dsn = sqliteDSN(dsn)
	}
	sqlDB, err := sqlOpenFunc(driverName(dbType), dsn)
	if err != nil {
		return fmt.Errorf("failed to open database for maintenance: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
	}

	switch dbType {
	case "sqlite":
		if _, err := sqlDB.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
			return fmt.Errorf("sqlite optimize failed: %w", err)
		}
		if _, err := sqlDB.ExecContext(ctx, "VACUUM;"); err != nil {
			return fmt.Errorf("sqlite vacuum failed: %w", err)
		}
		// Not every journal mode supports checkpoints.
		_, _ = sqlDB.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE);")
		var res string
		if err := sqlDB.QueryRowContext(ctx, "PRAGMA integrity_check;").Scan(&res); err != nil {
			return fmt.Errorf("sqlite integrity_check failed: %w", err)
		}
		if res != "ok" {
			return fmt.Errorf("sqlite integrity_check failed: %s", res)
		}
	case "postgres":
		if _, err := sqlDB.ExecContext(ctx, "VACUUM ANALYZE;"); err != nil {
			return fmt.Errorf("postgres vacuum failed: %w", err)
		}
	case "mysql":
		rows, err := sqlDB.QueryContext(ctx, "SHOW TABLES")
		if err != nil {
			return fmt.Errorf("mysql show tables failed: %w", err)
		}
		var tables []string
		for rows.Next() {
			var table string
			if err := rows.Scan(&table); err != nil {
				_ = rows.Close()
				return fmt.Errorf("mysql read table name failed: %w", err)
			}
			tables = append(tables, table)
		}
		_ = rows.Close()
		var lastErr error
		for _, table := range tables {
			if _, err := sqlDB.ExecContext(ctx, fmt.Sprintf("OPTIMIZE TABLE `%s`", table)); err != nil {
				dbLogf("db: mysql optimize table %s failed: %v", table, err)
				lastErr = err
			}
		}
		if lastErr != nil {
			return fmt.Errorf("mysql optimize encountered errors: %w", lastErr)
		}
	default:
		return fmt.Errorf("unsupported db type for maintenance: %s", dbType)
	}
	return nil
}
