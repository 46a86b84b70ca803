// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package agent

import (
	"regexp"
	"strconv"
	"strings"
)

var loadAverageRe = regexp.MustCompile(`load averages?: ([0-9.]+),?\s*([0-9.]+),?\s*([0-9.]+)`)

// ParseLoadAverage extracts the 1, 5 and 15 minute load averages from
// uptime output. It returns [0 0 0] when the line does not match.
func ParseLoadAverage(uptime string) []float64 {
	m := loadAverageRe.FindStringSubmatch(uptime)
	if m == nil {
		return []float64{0, 0, 0}
	}
	out := make([]float64, 3)
	for i := range out {
		out[i], _ = strconv.ParseFloat(m[i+1], 64)
	}
	return out
}

// ParseTopCPU returns the user CPU percentage from `top -bn1` output. Both
// "%Cpu(s):  2.3 us," and the older "Cpu(s):  2.3%us," forms are accepted.
func ParseTopCPU(out string) (float64, bool) {
	for _, line := range strings.Split(out, "\n") {
		_, rest, found := strings.Cut(line, "Cpu(s)")
		if !found {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(rest, ":"))
		if len(fields) == 0 {
			return 0, false
		}
		f := strings.TrimSuffix(fields[0], ",")
		if i := strings.Index(f, "%"); i >= 0 {
			f = f[:i]
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// ParseLscpuModel returns the "Model name:" value from lscpu output.
func ParseLscpuModel(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Model name:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Model name:"))
		}
	}
	return ""
}

// ParseFree reads the Mem: row of `free -b`.
func ParseFree(out string) (UsageMetrics, bool) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Mem:") {
			return usageFromFields(strings.Fields(line)), true
		}
	}
	return UsageMetrics{}, false
}

// ParseDf reads the last line of `df -B1 <path>`.
func ParseDf(out string) (UsageMetrics, bool) {
	lines := nonEmptyLines(out)
	if len(lines) < 2 {
		return UsageMetrics{}, false
	}
	return usageFromFields(strings.Fields(lines[len(lines)-1])), true
}

// usageFromFields maps fields 1..3 to total, used and free.
func usageFromFields(fields []string) UsageMetrics {
	m := UsageMetrics{
		Total: fieldUint(fields, 1),
		Used:  fieldUint(fields, 2),
		Free:  fieldUint(fields, 3),
	}
	if m.Total > 0 {
		m.Usage = float64(m.Used) / float64(m.Total) * 100
	}
	return m
}

// ParseNetDev sums the receive and transmit counters of /proc/net/dev,
// skipping the loopback interface.
func ParseNetDev(data string) NetworkMetrics {
	var n NetworkMetrics
	for _, line := range strings.Split(data, "\n") {
		i := strings.Index(line, ":")
		if i < 0 {
			continue
		}
		if strings.TrimSpace(line[:i]) == "lo" {
			continue
		}
		// "eth0:123" has no space once counters grow wide.
		fields := strings.Fields(line[:i+1] + " " + line[i+1:])
		if len(fields) < 10 {
			continue
		}
		n.BytesReceived += fieldUint(fields, 1)
		n.PacketsReceived += fieldUint(fields, 2)
		n.BytesSent += fieldUint(fields, 9)
		n.PacketsSent += fieldUint(fields, 10)
	}
	return n
}

// ParsePS reads `ps aux` output, skipping the header, and returns at most
// limit rows.
func ParsePS(out string, limit int) []ProcessInfo {
	lines := nonEmptyLines(out)
	if len(lines) <= 1 {
		return []ProcessInfo{}
	}
	lines = lines[1:]
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}
	procs := make([]ProcessInfo, 0, len(lines))
	for _, line := range lines {
		f := strings.Fields(line)
		pid, _ := strconv.Atoi(field(f, 1))
		procs = append(procs, ProcessInfo{
			PID:    pid,
			Name:   fieldOr(f, 10, "unknown"),
			CPU:    fieldFloat(f, 2),
			Memory: fieldFloat(f, 3),
			Status: fieldOr(f, 7, "unknown"),
		})
	}
	return procs
}

// ParseSystemctl reads `systemctl list-units --no-legend` output and returns
// at most max services.
func ParseSystemctl(out string, max int) []ServiceInfo {
	services := []ServiceInfo{}
	for _, line := range nonEmptyLines(out) {
		if max > 0 && len(services) >= max {
			break
		}
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "●"))
		f := strings.Fields(line)
		if len(f) == 0 {
			continue
		}
		status := ServiceInactive
		switch field(f, 2) {
		case ServiceActive:
			status = ServiceActive
		case ServiceFailed:
			status = ServiceFailed
		}
		var desc string
		if len(f) > 4 {
			desc = strings.Join(f[4:], " ")
		}
		services = append(services, ServiceInfo{
			Name:        strings.TrimSuffix(f[0], ".service"),
			Status:      status,
			Enabled:     true,
			Description: desc,
		})
	}
	return services
}

// PortInUse reports whether `netstat -tuln` lists a local address ending in
// ":<port>".
func PortInUse(out string, port int) bool {
	suffix := ":" + strconv.Itoa(port)
	for _, line := range strings.Split(out, "\n") {
		f := strings.Fields(line)
		if len(f) < 4 {
			continue
		}
		if strings.HasSuffix(f[3], suffix) {
			return true
		}
	}
	return false
}

// dockerFormat asks `docker ps` for tab separated columns under a header.
const dockerFormat = "table {{.ID}}\t{{.Image}}\t{{.Command}}\t{{.CreatedAt}}\t{{.Status}}\t{{.Ports}}\t{{.Names}}"

// ParseDockerPS reads `docker ps --format` output produced with dockerFormat.
func ParseDockerPS(out string) []Container {
	lines := nonEmptyLines(out)
	if len(lines) <= 1 {
		return []Container{}
	}
	containers := make([]Container, 0, len(lines)-1)
	for _, line := range lines[1:] {
		p := strings.Split(line, "\t")
		containers = append(containers, Container{
			ID:      strings.TrimSpace(field(p, 0)),
			Image:   strings.TrimSpace(field(p, 1)),
			Command: strings.TrimSpace(field(p, 2)),
			Created: strings.TrimSpace(field(p, 3)),
			Status:  strings.TrimSpace(field(p, 4)),
			Ports:   strings.TrimSpace(field(p, 5)),
			Name:    strings.TrimSpace(field(p, 6)),
		})
	}
	return containers
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, strings.TrimRight(line, "\r"))
		}
	}
	return out
}

func field(f []string, i int) string {
	if i < len(f) {
		return f[i]
	}
	return ""
}

func fieldOr(f []string, i int, def string) string {
	if v := field(f, i); v != "" {
		return v
	}
	return def
}

func fieldUint(f []string, i int) uint64 {
	v, _ := strconv.ParseUint(field(f, i), 10, 64)
	return v
}

func fieldFloat(f []string, i int) float64 {
	v, _ := strconv.ParseFloat(field(f, i), 64)
	return v
}
