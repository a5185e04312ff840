// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/nvmesmart"
	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/telemetry"
)

const (
	TypeTelemetryAgent = "telemetry_agent"
	TypeUDPListener    = "udp_listener"
)

var (
	agentsMu sync.Mutex
	agents   = map[string]*telemetry.Agent{}
)

func TelemetryAgentSettings(producer ProducerConfig, globalConfig GlobalConfig) telemetry.TelemetryAgentConfig {
	natsURL := GetStringSetting(producer.Settings, "nats_url", globalConfig.NatsURL)

	return telemetry.TelemetryAgentConfig{
		Target:                GetStringSetting(producer.Settings, "metrics_target", orDefault(globalConfig.MetricsTarget, "127.0.0.1:1555")),
		Interval:              GetIntSetting(producer.Settings, "interval", 10),
		Services:              GetStringSliceSetting(producer.Settings, "services", nil),
		NatsURL:               natsURL,
		NatsSubject:           GetStringSetting(producer.Settings, "nats_subject", "tinycollectd.telemetry"),
		UseNats:               natsURL != "",
		Prometheus:            GetBoolSetting(producer.Settings, "prometheus", false),
		PrometheusPort:        GetIntSetting(producer.Settings, "prometheus_port", 8080),
		NodeName:              GetStringSetting(producer.Settings, "node_name", globalConfig.NodeName),
		InstanceID:            GetStringSetting(producer.Settings, "instance_id", globalConfig.InstanceID),
		SmartSource:           GetStringSetting(producer.Settings, "smart_source", nvmesmart.SourceIoctl),
		NVMeSysfsDir:          GetStringSetting(producer.Settings, "nvme_sysfs_dir", nvmesmart.DefaultSysfsDir),
		LifetimeUsedThreshold: int64(GetIntSetting(producer.Settings, "lifetime_used_threshold", 80)),
	}
}

func UDPListenerSettings(producer ProducerConfig) telemetry.UDPListenerConfig {
	return telemetry.UDPListenerConfig{
		ListenAddr: GetStringSetting(producer.Settings, "listen_addr", "127.0.0.1:1555"),
		OutputFile: GetStringSetting(producer.Settings, "output_file", "received_metrics.jsonl"),
	}
}

func StartProducers(ctx context.Context, producer ProducerConfig, globalConfig GlobalConfig, wg *sync.WaitGroup) {
	defer wg.Done()

	switch producer.Type {
	case TypeTelemetryAgent:
		settings := TelemetryAgentSettings(producer, globalConfig)
		agent := telemetry.NewAgent(settings)
		registerAgent(producer.Name, agent)
		defer unregisterAgent(producer.Name)

		log.Info().Str("producer", producer.Name).Msg("--- telemetry agent ---")
		if err := agent.Run(ctx); err != nil {
			log.Error().Err(err).Str("producer", producer.Name).Msg("telemetry agent failed")
		}
	case TypeUDPListener:
		settings := UDPListenerSettings(producer)
		listener, err := telemetry.NewListener(settings)
		if err != nil {
			log.Error().Err(err).Str("producer", producer.Name).Msg("error starting udp listener")
			return
		}
		defer listener.Close()

		log.Info().Str("producer", producer.Name).Msg("--- udp listener ---")
		if err := listener.Serve(ctx); err != nil {
			log.Error().Err(err).Str("producer", producer.Name).Msg("udp listener failed")
		}
	default:
		log.Warn().Msgf("unknown producer type: %s", producer.Type)
	}
}

// ApplyServiceUpdates pushes the service lists of a reloaded config to the
// running agents with the same producer name.
func ApplyServiceUpdates(config *Config) {
	agentsMu.Lock()
	defer agentsMu.Unlock()

	for _, producer := range config.Producers {
		if producer.Type != TypeTelemetryAgent {
			continue
		}
		agent, ok := agents[producer.Name]
		if !ok {
			log.Warn().Str("producer", producer.Name).Msg("config reload names a producer that is not running")
			continue
		}
		agent.SetServices(GetStringSliceSetting(producer.Settings, "services", nil))
	}
}

func registerAgent(name string, agent *telemetry.Agent) {
	agentsMu.Lock()
	defer agentsMu.Unlock()
	agents[name] = agent
}

func unregisterAgent(name string) {
	agentsMu.Lock()
	defer agentsMu.Unlock()
	delete(agents, name)
}

func orDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
