// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

type TelemetryAgentConfig struct {
	Target         string // host:port of the UDP collector
	Interval       int    // in seconds
	Services       []string
	NatsURL        string
	NatsSubject    string
	UseNats        bool
	Prometheus     bool
	PrometheusPort int
	NodeName       string
	InstanceID     string

	// NVMe SMART collection
	SmartSource           string // "ioctl" or "cli"
	NVMeSysfsDir          string
	LifetimeUsedThreshold int64 // percentage
}

type UDPListenerConfig struct {
	ListenAddr string
	OutputFile string
}
