// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/nvmesmart"
	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/services"
	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/sysinfo"
)

func fakeSources() sources {
	return sources{
		hostInfo: func() (sysinfo.HostInfo, error) {
			return sysinfo.HostInfo{Timestamp: 1700000000, Hostname: "node-a", Uptime: 3600, CPUFreqMHz: 2400}, nil
		},
		diskUsage: func() []sysinfo.DiskUsage {
			return []sysinfo.DiskUsage{{Mount: "/", TotalGB: 100, UsedGB: 25, UsedPercent: 25}}
		},
		network: func() []sysinfo.InterfaceCounters {
			return []sysinfo.InterfaceCounters{{Interface: "eth0", RxBytes: 10, TxBytes: 20}}
		},
		services: func(_ context.Context, names []string) []services.Status {
			out := make([]services.Status, 0, len(names))
			for _, n := range names {
				out = append(out, services.Status{ServiceName: n, Status: "active"})
			}
			return out
		},
		smartLogs: func() []nvmesmart.SmartLog {
			return []nvmesmart.SmartLog{{Name: "nvme0", Temperature: nvmesmart.Some(310)}}
		},
		nvmeInventory: func() []sysinfo.NVMeNamespace { return nil },
	}
}

func TestBuildPayloadShape(t *testing.T) {
	cfg := TelemetryAgentConfig{NodeName: "node-a", InstanceID: "i-1"}

	payload := buildPayload(context.Background(), fakeSources(), cfg, []string{"sshd"})

	_, err := uuid.Parse(payload.CollectionID)
	require.NoError(t, err)

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{
		"collection_id", "node_name", "instance_id", "timestamp", "hostname", "uptime",
		"cpu_freq_mhz", "disk_usage", "network", "services", "smart_log", "nvme_inventory",
	} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, "node-a", decoded["hostname"])
	assert.Equal(t, float64(3600), decoded["uptime"])
	assert.Equal(t, []interface{}{}, decoded["nvme_inventory"])

	svc := decoded["services"].([]interface{})
	require.Len(t, svc, 1)
	assert.Equal(t, map[string]interface{}{"service_name": "sshd", "status": "active"}, svc[0])

	smart := decoded["smart_log"].([]interface{})
	require.Len(t, smart, 1)
	entry := smart[0].(map[string]interface{})
	assert.Equal(t, "nvme0", entry["nvme_name"])
	assert.Equal(t, float64(310), entry["temperature"])
	assert.Nil(t, entry["media_errors"])
}

func TestBuildPayloadHostInfoError(t *testing.T) {
	src := fakeSources()
	src.hostInfo = func() (sysinfo.HostInfo, error) { return sysinfo.HostInfo{}, errors.New("no host") }
	src.smartLogs = func() []nvmesmart.SmartLog { return nil }

	payload := buildPayload(context.Background(), src, TelemetryAgentConfig{}, nil)

	assert.Empty(t, payload.Hostname)
	assert.NotNil(t, payload.SmartLog)
	assert.Empty(t, payload.SmartLog)
	assert.Len(t, payload.DiskUsage, 1)
}

func TestBuildPayloadUniqueCollectionID(t *testing.T) {
	a := buildPayload(context.Background(), fakeSources(), TelemetryAgentConfig{}, nil)
	b := buildPayload(context.Background(), fakeSources(), TelemetryAgentConfig{}, nil)
	assert.NotEqual(t, a.CollectionID, b.CollectionID)
}

func TestAgentSetServices(t *testing.T) {
	agent := &Agent{src: fakeSources(), services: []string{"sshd"}}

	agent.SetServices([]string{"chronyd", "kubelet"})
	payload := agent.Collect(context.Background())

	require.Len(t, payload.Services, 2)
	assert.Equal(t, "chronyd", payload.Services[0].ServiceName)
	assert.Equal(t, "kubelet", payload.Services[1].ServiceName)
}
