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
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cpuFreqGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "node_cpu_frequency_mhz",
			Help: "Current frequency of the first CPU in MHz",
		},
		[]string{"node", "instance"},
	)
	uptimeGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "node_uptime_seconds",
			Help: "Host uptime in seconds",
		},
		[]string{"node", "instance"},
	)
	diskUsedPercentGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "node_filesystem_used_percent",
			Help: "Used space percentage of a mounted filesystem",
		},
		[]string{"node", "instance", "mount"},
	)
	networkRxGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "node_network_receive_bytes",
			Help: "Bytes received on a network interface",
		},
		[]string{"node", "instance", "interface"},
	)
	networkTxGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "node_network_transmit_bytes",
			Help: "Bytes transmitted on a network interface",
		},
		[]string{"node", "instance", "interface"},
	)
)

func init() {
	prometheus.MustRegister(cpuFreqGauge)
	prometheus.MustRegister(uptimeGauge)
	prometheus.MustRegister(diskUsedPercentGauge)
	prometheus.MustRegister(networkRxGauge)
	prometheus.MustRegister(networkTxGauge)
}

func PublishToPrometheus(info HostInfo, disks []DiskUsage, network []InterfaceCounters, nodeName, instanceID string) {
	labels := prometheus.Labels{
		"node":     nodeName,
		"instance": instanceID,
	}
	cpuFreqGauge.With(labels).Set(float64(info.CPUFreqMHz))
	uptimeGauge.With(labels).Set(float64(info.Uptime))

	for _, d := range disks {
		diskUsedPercentGauge.With(prometheus.Labels{
			"node":     nodeName,
			"instance": instanceID,
			"mount":    d.Mount,
		}).Set(d.UsedPercent)
	}

	for _, n := range network {
		ifLabels := prometheus.Labels{
			"node":      nodeName,
			"instance":  instanceID,
			"interface": n.Interface,
		}
		networkRxGauge.With(ifLabels).Set(float64(n.RxBytes))
		networkTxGauge.With(ifLabels).Set(float64(n.TxBytes))
	}
}
