// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/stratus/buildvars"
	"github.com/toeirei/stratus/internal/agent"
	"github.com/toeirei/stratus/internal/ai"
	"github.com/toeirei/stratus/internal/config"
	"github.com/toeirei/stratus/internal/core"
	"github.com/toeirei/stratus/internal/db"
	"github.com/toeirei/stratus/internal/i18n"
	"github.com/toeirei/stratus/internal/logging"
	"github.com/toeirei/stratus/internal/remote"
	"github.com/toeirei/stratus/internal/security"
)

const modulePath = "github.com/toeirei/stratus"

var version = "dev"   // set by the linker
var gitCommit = "dev" // short commit SHA, set at build time
var buildDate = ""    // RFC3339, set at build time

var (
	cfgFile         string
	envFile         string
	verbose         bool
	showVersionFlag bool
	jsonOutput      bool
)

var appConfig config.Config

// setupDefaultServices loads configuration, configures logging and i18n and
// opens the database unless a store is already installed.
func setupDefaultServices(cmd *cobra.Command, args []string) error {
	if err := loadAppConfig(cmd, args); err != nil {
		return err
	}
	if !db.IsInitialized() {
		if _, err := db.New(appConfig.Database.Type, appConfig.Database.Dsn); err != nil {
			return errors.New(i18n.T("config.error_init_db", err))
		}
	}
	return nil
}

// loadAppConfig fills appConfig and configures logging and i18n.
func loadAppConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		logging.Warnf("config: %v", err)
	}

	configPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	appConfig, err = config.LoadConfig[config.Config](cmd, config.Defaults(), configPath)
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		logging.Debugf("config: no stratus.yaml found, using defaults")
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := appConfig.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logging.Configure(appConfig.Log.Level, appConfig.Log.Format)
	if verbose {
		logging.SetDebug(true)
		db.SetDebug(true)
	}
	i18n.Init(appConfig.Language)
	return nil
}

// newService builds the core service from appConfig and the default store.
// Tests replace it to inject fakes.
var newService = func() (*core.Service, error) {
	store := db.Default()
	if store == nil {
		return nil, errors.New("database not initialized")
	}
	key := security.FromString(appConfig.AI.APIKey)
	advisor := ai.NewAdvisor(ai.Config{
		APIKey:            key,
		Model:             appConfig.AI.Model,
		BaseURL:           appConfig.AI.BaseURL,
		RequestsPerMinute: appConfig.AI.RequestsPerMinute,
	})
	agentOpts := agent.Options{
		DiskPath:       appConfig.Agent.DiskPath,
		DockerSource:   appConfig.Agent.DockerSource,
		CommandTimeout: appConfig.Agent.CommandTimeout,
	}
	return core.NewService(store, core.Options{
		Advisor:      advisor,
		AgentOptions: agentOpts,
		SSH: remote.Config{
			PrivateKeyPath: appConfig.SSH.PrivateKeyPath,
			DialTimeout:    appConfig.SSH.DialTimeout,
		},
		APIKey: key,
	}), nil
}

// loadService builds the service and activates a stored OpenAI key.
func loadService(cmd *cobra.Command) (*core.Service, error) {
	svc, err := newService()
	if err != nil {
		return nil, err
	}
	if err := svc.LoadAPIKey(cmd.Context()); err != nil {
		logging.Warnf("settings: could not load stored OpenAI key: %v", err)
	}
	return svc, nil
}

// Execute runs the CLI. The main package handles the exit code.
func Execute() error {
	return NewRootCmd().Execute()
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// NewRootCmd creates a fresh command tree. Every call returns independent
// commands so tests can execute them in isolation.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stratus",
		Short: "Stratus is an administration dashboard for a private cloud.",
		Long: `Stratus tracks virtual machines, alerts and system metrics, asks an LLM for
infrastructure recommendations and exposes a local agent that reports live
host data. Run "stratus serve" to start the HTTP API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersionFlag {
				fmt.Fprintln(cmd.OutOrStdout(), compositeVersion())
				os.Exit(0)
			}
			return nil
		},
	}
	cmd.Version = compositeVersion()

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&showVersionFlag, "version", "V", false, "Print version and exit")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: stratus.yaml in the user config dir, /etc/stratus or .)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	cmd.PersistentFlags().String("database.type", "sqlite", "Database type (sqlite, postgres, mysql)")
	cmd.PersistentFlags().String("database.dsn", "./stratus.db", "Database connection string (DSN)")
	cmd.PersistentFlags().String("language", "en", `CLI language ("en", "de")`)

	cmd.AddCommand(
		newServeCmd(),
		newSeedCmd(),
		newVMCmd(),
		newAlertCmd(),
		newRecommendationCmd(),
		newMetricsCmd(),
		newSettingsCmd(),
		newAgentCmd(),
		newHostCmd(),
		newTopCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newDBMaintainCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" {
		out += " (" + c + ")"
	}
	if d != "" {
		out += " built: " + d
	}
	return out
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of stratus",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "stratus "+compositeVersion())
		},
	}
}

// resolveBuildVersion prefers ldflags, then module build info, then the
// commit hash.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	ok := info != nil
	if info == nil {
		info, ok = debug.ReadBuildInfo()
	}

	if ok && info != nil {
		if resolvedVersion == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		if resolvedVersion == "dev" {
			for _, dep := range info.Deps {
				if dep.Path == modulePath && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" && resolvedCommit == "dev" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" && resolvedDate == "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}
