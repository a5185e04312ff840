// Copyright (C) 2024 Clyso GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package sysinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/net"
)

const sysfsCpufreqPath = "/sys/devices/system/cpu"

type HostInfo struct {
	Timestamp  int64  `json:"timestamp"`
	Hostname   string `json:"hostname"`
	Uptime     uint64 `json:"uptime"`
	CPUFreqMHz uint64 `json:"cpu_freq_mhz"`
}

// DiskUsage is the usage of one mounted filesystem. Sizes are decimal GB.
type DiskUsage struct {
	Mount       string  `json:"mount"`
	TotalGB     uint64  `json:"total_gb"`
	UsedGB      uint64  `json:"used_gb"`
	UsedPercent float64 `json:"used_percent"`
}

type InterfaceCounters struct {
	Interface string `json:"interface"`
	RxBytes   uint64 `json:"rx_bytes"`
	TxBytes   uint64 `json:"tx_bytes"`
}

var (
	hostInfo       = host.Info
	cpuInfo        = cpu.Info
	diskPartitions = disk.Partitions
	diskUsage      = disk.Usage
	netIOCounters  = net.IOCounters
	readSysfsFunc  = readCPUFreqSysfs
	now            = time.Now
)

// CollectHostInfo gathers timestamp, hostname, uptime and cpu frequency.
func CollectHostInfo() (HostInfo, error) {
	info, err := hostInfo()
	if err != nil {
		return HostInfo{}, fmt.Errorf("error reading host info: %w", err)
	}

	hostname := info.Hostname
	if hostname == "" {
		hostname = "unknown"
	}

	return HostInfo{
		Timestamp:  now().Unix(),
		Hostname:   hostname,
		Uptime:     info.Uptime,
		CPUFreqMHz: cpuFreqMHz(),
	}, nil
}

// cpuFreqMHz reads the current frequency of the first cpu from cpufreq sysfs,
// falling back to /proc/cpuinfo through gopsutil. 0 means unknown.
func cpuFreqMHz() uint64 {
	if mhz, ok := readSysfsFunc(0); ok {
		return mhz
	}

	infos, err := cpuInfo()
	if err != nil || len(infos) == 0 {
		log.Debug().Err(err).Msg("cpu frequency unavailable")
		return 0
	}
	return uint64(infos[0].Mhz)
}

func readCPUFreqSysfs(core int) (uint64, bool) {
	path := filepath.Join(sysfsCpufreqPath, fmt.Sprintf("cpu%d/cpufreq/scaling_cur_freq", core))

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	// scaling_cur_freq is reported in kHz.
	khz, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false
	}
	return khz / 1000, true
}

// CollectDiskUsage reports every mounted physical filesystem. Filesystems
// that cannot be stat'ed are skipped.
func CollectDiskUsage() []DiskUsage {
	results := make([]DiskUsage, 0)

	partitions, err := diskPartitions(false)
	if err != nil {
		log.Error().Err(err).Msg("error listing partitions")
		return results
	}

	for _, p := range partitions {
		usage, err := diskUsage(p.Mountpoint)
		if err != nil {
			log.Warn().Err(err).Str("mount", p.Mountpoint).Msg("error reading disk usage")
			continue
		}

		used := usage.Total - usage.Free
		var usedPercent float64
		if usage.Total > 0 {
			usedPercent = float64(used) / float64(usage.Total) * 100
		}

		results = append(results, DiskUsage{
			Mount:       p.Mountpoint,
			TotalGB:     usage.Total / 1_000_000_000,
			UsedGB:      used / 1_000_000_000,
			UsedPercent: usedPercent,
		})
	}

	return results
}

// CollectNetwork reports cumulative byte counters per interface.
func CollectNetwork() []InterfaceCounters {
	results := make([]InterfaceCounters, 0)

	counters, err := netIOCounters(true)
	if err != nil {
		log.Error().Err(err).Msg("error reading network counters")
		return results
	}

	for _, c := range counters {
		results = append(results, InterfaceCounters{
			Interface: c.Name,
			RxBytes:   c.BytesRecv,
			TxBytes:   c.BytesSent,
		})
	}

	return results
}
