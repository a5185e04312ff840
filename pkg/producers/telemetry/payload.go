// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/nvmesmart"
	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/services"
	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/sysinfo"
)

// Payload is the single document shipped per collection cycle.
type Payload struct {
	CollectionID  string                      `json:"collection_id"`
	NodeName      string                      `json:"node_name,omitempty"`
	InstanceID    string                      `json:"instance_id,omitempty"`
	Timestamp     int64                       `json:"timestamp"`
	Hostname      string                      `json:"hostname"`
	Uptime        uint64                      `json:"uptime"`
	CPUFreqMHz    uint64                      `json:"cpu_freq_mhz"`
	DiskUsage     []sysinfo.DiskUsage         `json:"disk_usage"`
	Network       []sysinfo.InterfaceCounters `json:"network"`
	Services      []services.Status           `json:"services"`
	SmartLog      []nvmesmart.SmartLog        `json:"smart_log"`
	NVMeInventory []sysinfo.NVMeNamespace     `json:"nvme_inventory"`
}

// sources are the collectors a payload is assembled from.
type sources struct {
	hostInfo      func() (sysinfo.HostInfo, error)
	diskUsage     func() []sysinfo.DiskUsage
	network       func() []sysinfo.InterfaceCounters
	services      func(ctx context.Context, names []string) []services.Status
	smartLogs     func() []nvmesmart.SmartLog
	nvmeInventory func() []sysinfo.NVMeNamespace
}

func defaultSources(smart *nvmesmart.Collector) sources {
	return sources{
		hostInfo:      sysinfo.CollectHostInfo,
		diskUsage:     sysinfo.CollectDiskUsage,
		network:       sysinfo.CollectNetwork,
		services:      services.CollectStatus,
		smartLogs:     smart.Collect,
		nvmeInventory: sysinfo.CollectNVMeInventory,
	}
}

// buildPayload runs every collector once. A failing collector leaves its
// section empty; the payload is still produced.
func buildPayload(ctx context.Context, src sources, cfg TelemetryAgentConfig, serviceNames []string) Payload {
	info, err := src.hostInfo()
	if err != nil {
		log.Error().Err(err).Msg("error collecting host info")
	}

	return Payload{
		CollectionID:  uuid.NewString(),
		NodeName:      cfg.NodeName,
		InstanceID:    cfg.InstanceID,
		Timestamp:     info.Timestamp,
		Hostname:      info.Hostname,
		Uptime:        info.Uptime,
		CPUFreqMHz:    info.CPUFreqMHz,
		DiskUsage:     orEmpty(src.diskUsage()),
		Network:       orEmpty(src.network()),
		Services:      orEmpty(src.services(ctx, serviceNames)),
		SmartLog:      orEmpty(src.smartLogs()),
		NVMeInventory: orEmpty(src.nvmeInventory()),
	}
}

// orEmpty keeps list sections encoded as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (p Payload) hostInfo() sysinfo.HostInfo {
	return sysinfo.HostInfo{
		Timestamp:  p.Timestamp,
		Hostname:   p.Hostname,
		Uptime:     p.Uptime,
		CPUFreqMHz: p.CPUFreqMHz,
	}
}
