// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package agent

// SystemInfo identifies the probed host.
type SystemInfo struct {
	Hostname    string    `json:"hostname"`
	Platform    string    `json:"platform"`
	Arch        string    `json:"arch"`
	Uptime      float64   `json:"uptime"` // agent process uptime in seconds
	LoadAverage []float64 `json:"loadAverage"`

	KernelVersion   string `json:"kernelVersion,omitempty"`
	PlatformVersion string `json:"platformVersion,omitempty"`
	HostUptime      uint64 `json:"hostUptime,omitempty"`
}

// CPUMetrics is the CPU part of ResourceMetrics.
type CPUMetrics struct {
	Usage float64 `json:"usage"`
	Cores int     `json:"cores"`
	Model string  `json:"model"`
}

// UsageMetrics describes a byte-counted resource such as memory or a disk.
type UsageMetrics struct {
	Total uint64  `json:"total"`
	Used  uint64  `json:"used"`
	Free  uint64  `json:"free"`
	Usage float64 `json:"usage"`
}

// NetworkMetrics holds counters summed over every non-loopback interface.
type NetworkMetrics struct {
	BytesReceived   uint64 `json:"bytesReceived"`
	BytesSent       uint64 `json:"bytesSent"`
	PacketsReceived uint64 `json:"packetsReceived"`
	PacketsSent     uint64 `json:"packetsSent"`
}

// ResourceMetrics is a live snapshot of CPU, memory, disk and network.
type ResourceMetrics struct {
	CPU     CPUMetrics     `json:"cpu"`
	Memory  UsageMetrics   `json:"memory"`
	Disk    UsageMetrics   `json:"disk"`
	Network NetworkMetrics `json:"network"`
}

// ProcessInfo is one row of the process table.
type ProcessInfo struct {
	PID    int     `json:"pid"`
	Name   string  `json:"name"`
	CPU    float64 `json:"cpu"`
	Memory float64 `json:"memory"`
	Status string  `json:"status"`
}

// Service states reported by SystemServices.
const (
	ServiceActive   = "active"
	ServiceInactive = "inactive"
	ServiceFailed   = "failed"
	ServiceUnknown  = "unknown"
)

// ServiceInfo describes a systemd service unit.
type ServiceInfo struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
}

// CommandResult is the outcome of ExecuteCommand.
type CommandResult struct {
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	Success    bool   `json:"success"`
	ExitCode   int    `json:"exitCode"`
	DurationMs int64  `json:"durationMs"`
}

// RestartResult is the outcome of RestartService.
type RestartResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Container is a running Docker container.
type Container struct {
	ID      string `json:"id"`
	Image   string `json:"image"`
	Command string `json:"command"`
	Created string `json:"created"`
	Status  string `json:"status"`
	Ports   string `json:"ports"`
	Name    string `json:"name"`
}
