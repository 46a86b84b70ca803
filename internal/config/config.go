// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the layered Stratus configuration: built-in defaults,
// a stratus.yaml file, a .env file, STRATUS_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"fmt"
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Language string         `mapstructure:"language" yaml:"language"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Agent    AgentConfig    `mapstructure:"agent" yaml:"agent"`
	AI       AIConfig       `mapstructure:"ai" yaml:"ai"`
	Monitor  MonitorConfig  `mapstructure:"monitor" yaml:"monitor"`
	Backup   BackupConfig   `mapstructure:"backup" yaml:"backup"`
	SSH      SSHConfig      `mapstructure:"ssh" yaml:"ssh"`
}

type DatabaseConfig struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	ListenAddr     string        `mapstructure:"listen_addr" yaml:"listen_addr"`
	AllowedSubnets []string      `mapstructure:"allowed_subnets" yaml:"allowed_subnets"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	// CommandRatePerMinute limits POST /api/agent/command and the AI routes.
	// Zero disables the limit.
	CommandRatePerMinute int `mapstructure:"command_rate_per_minute" yaml:"command_rate_per_minute"`
}

// AgentConfig controls the infrastructure agent.
type AgentConfig struct {
	CommandTimeout time.Duration `mapstructure:"command_timeout" yaml:"command_timeout"`
	DiskPath       string        `mapstructure:"disk_path" yaml:"disk_path"`
	// DockerSource is "cli" (docker ps) or "api" (Docker Engine API).
	DockerSource   string        `mapstructure:"docker_source" yaml:"docker_source"`
	StreamInterval time.Duration `mapstructure:"stream_interval" yaml:"stream_interval"`
	ProcessLimit   int           `mapstructure:"process_limit" yaml:"process_limit"`
}

// AIConfig controls the LLM advisor. APIKey is only the fallback; a key stored
// in the settings table wins.
type AIConfig struct {
	APIKey            string `mapstructure:"api_key" yaml:"api_key"`
	Model             string `mapstructure:"model" yaml:"model"`
	BaseURL           string `mapstructure:"base_url" yaml:"base_url"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// MonitorConfig controls the background metrics sampler.
type MonitorConfig struct {
	Enabled         bool          `mapstructure:"enabled" yaml:"enabled"`
	Interval        time.Duration `mapstructure:"interval" yaml:"interval"`
	CPUThreshold    float64       `mapstructure:"cpu_threshold" yaml:"cpu_threshold"`
	MemoryThreshold float64       `mapstructure:"memory_threshold" yaml:"memory_threshold"`
	DiskThreshold   float64       `mapstructure:"disk_threshold" yaml:"disk_threshold"`
}

type BackupConfig struct {
	S3Bucket string `mapstructure:"s3_bucket" yaml:"s3_bucket"`
	S3Region string `mapstructure:"s3_region" yaml:"s3_region"`
	S3Prefix string `mapstructure:"s3_prefix" yaml:"s3_prefix"`
}

type SSHConfig struct {
	PrivateKeyPath string        `mapstructure:"private_key_path" yaml:"private_key_path"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
}

// Defaults returns the built-in defaults keyed by their viper path.
func Defaults() map[string]any {
	return map[string]any{
		"database.type":                  "sqlite",
		"database.dsn":                   "./stratus.db",
		"language":                       "en",
		"log.level":                      "info",
		"log.format":                     "text",
		"server.listen_addr":             ":5000",
		"server.allowed_subnets":         []string{},
		"server.request_timeout":         "60s",
		"server.command_rate_per_minute": 30,
		"agent.command_timeout":          "30s",
		"agent.disk_path":                "/",
		"agent.docker_source":            "cli",
		"agent.stream_interval":          "5s",
		"agent.process_limit":            10,
		"ai.api_key":                     "",
		"ai.model":                       "gpt-4o",
		"ai.base_url":                    "",
		"ai.requests_per_minute":         20,
		"monitor.enabled":                false,
		"monitor.interval":               "1m",
		"monitor.cpu_threshold":          80.0,
		"monitor.memory_threshold":       85.0,
		"monitor.disk_threshold":         85.0,
		"backup.s3_bucket":               "",
		"backup.s3_region":               "",
		"backup.s3_prefix":               "stratus/",
		"ssh.private_key_path":           "",
		"ssh.dial_timeout":               "10s",
	}
}

// Validate checks values that would otherwise fail late at runtime.
func (c Config) Validate() error {
	switch c.Database.Type {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	switch c.Agent.DockerSource {
	case "", "cli", "api":
	default:
		return fmt.Errorf("agent.docker_source must be \"cli\" or \"api\", got %q", c.Agent.DockerSource)
	}
	for name, v := range map[string]float64{
		"monitor.cpu_threshold":    c.Monitor.CPUThreshold,
		"monitor.memory_threshold": c.Monitor.MemoryThreshold,
		"monitor.disk_threshold":   c.Monitor.DiskThreshold,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s must be between 0 and 100, got %v", name, v)
		}
	}
	if c.Monitor.Enabled && c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive when the monitor is enabled")
	}
	return nil
}
