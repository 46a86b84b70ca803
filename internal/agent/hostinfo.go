// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package agent

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
)

// HostDetails are the facts gopsutil adds to SystemInfo.
type HostDetails struct {
	KernelVersion   string
	PlatformVersion string
	Uptime          uint64
}

// HostInfoProvider supplies host details that no parsed command covers.
type HostInfoProvider interface {
	HostDetails(ctx context.Context) (HostDetails, error)
	LogicalCores(ctx context.Context) (int, error)
}

type gopsutilHost struct{}

func (gopsutilHost) HostDetails(ctx context.Context) (HostDetails, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return HostDetails{}, err
	}
	return HostDetails{
		KernelVersion:   info.KernelVersion,
		PlatformVersion: info.PlatformVersion,
		Uptime:          info.Uptime,
	}, nil
}

func (gopsutilHost) LogicalCores(ctx context.Context) (int, error) {
	return cpu.CountsWithContext(ctx, true)
}
