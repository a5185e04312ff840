// Copyright 2024 Clyso GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/nvmesmart"
	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/telemetry"
)

var (
	taTarget         string
	taInterval       int
	taServices       []string
	taNatsURL        string
	taNatsSubject    string
	taPromEnabled    bool
	taPromPort       int
	taNodeName       string
	taInstanceID     string
	taSmartSource    string
	taSysfsDir       string
	taLifetimeUsedTh int64
)

var telemetryAgentCmd = &cobra.Command{
	Use:   "telemetry-agent",
	Short: "Collect host metrics and NVMe SMART logs and send them over UDP",
	Run: func(cmd *cobra.Command, args []string) {
		config := telemetry.TelemetryAgentConfig{
			Target:                taTarget,
			Interval:              taInterval,
			Services:              taServices,
			NatsURL:               taNatsURL,
			NatsSubject:           taNatsSubject,
			Prometheus:            taPromEnabled,
			PrometheusPort:        taPromPort,
			NodeName:              taNodeName,
			InstanceID:            taInstanceID,
			SmartSource:           taSmartSource,
			NVMeSysfsDir:          taSysfsDir,
			LifetimeUsedThreshold: taLifetimeUsedTh,
		}

		config = mergeTelemetryAgentConfigWithEnv(config)
		config.UseNats = config.NatsURL != ""

		event := log.Info()
		event.Str("target", config.Target)
		event.Int("interval_seconds", config.Interval)
		event.Strs("services", config.Services)
		event.Bool("use_nats", config.UseNats)
		if config.UseNats {
			event.Str("nats_url", config.NatsURL)
			event.Str("nats_subject", config.NatsSubject)
		}

		event.Bool("prometheus_enabled", config.Prometheus)
		if config.Prometheus {
			event.Int("prometheus_port", config.PrometheusPort)
		}

		event.Str("node_name", config.NodeName)
		event.Str("instance_id", config.InstanceID)
		event.Str("smart_source", config.SmartSource)
		event.Str("nvme_sysfs_dir", config.NVMeSysfsDir)
		event.Int64("lifetime_used_threshold", config.LifetimeUsedThreshold)

		// Finalize the log message with the main message
		event.Msg("configuration_loaded")

		validateTelemetryAgentConfig(config)

		ctx, stop := signalContext()
		defer stop()

		if err := telemetry.NewAgent(config).Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("telemetry agent failed")
		}
	},
}

func mergeTelemetryAgentConfigWithEnv(cfg telemetry.TelemetryAgentConfig) telemetry.TelemetryAgentConfig {
	cfg.Target = getEnv("METRICS_TARGET", cfg.Target)
	cfg.Interval = getEnvInt("INTERVAL", cfg.Interval)
	cfg.Services = getEnvStringSlice("SERVICES", cfg.Services)
	cfg.NatsURL = getEnv("NATS_URL", cfg.NatsURL)
	cfg.NatsSubject = getEnv("NATS_SUBJECT", cfg.NatsSubject)
	cfg.Prometheus = getEnvBool("PROMETHEUS", cfg.Prometheus)
	cfg.PrometheusPort = getEnvInt("PROMETHEUS_PORT", cfg.PrometheusPort)
	cfg.NodeName = getEnv("NODE_NAME", cfg.NodeName)
	cfg.InstanceID = getEnv("INSTANCE_ID", cfg.InstanceID)
	cfg.SmartSource = getEnv("SMART_SOURCE", cfg.SmartSource)
	cfg.NVMeSysfsDir = getEnv("NVME_SYSFS_DIR", cfg.NVMeSysfsDir)
	cfg.LifetimeUsedThreshold = getEnvInt64("LIFETIME_USED_THRESHOLD", cfg.LifetimeUsedThreshold)

	return cfg
}

func init() {
	telemetryAgentCmd.Flags().StringVar(&taTarget, "target", "127.0.0.1:1555", "UDP collector address (host:port)")
	telemetryAgentCmd.Flags().IntVar(&taInterval, "interval", 10, "Interval in seconds between collections")
	telemetryAgentCmd.Flags().StringSliceVar(&taServices, "services", nil, "Comma separated list of systemd services to poll")
	telemetryAgentCmd.Flags().StringVar(&taNatsURL, "nats-url", "", "NATS server URL")
	telemetryAgentCmd.Flags().StringVar(&taNatsSubject, "nats-subject", "tinycollectd.telemetry", "NATS subject to publish payloads")
	telemetryAgentCmd.Flags().BoolVar(&taPromEnabled, "prometheus", false, "Enable Prometheus metrics")
	telemetryAgentCmd.Flags().IntVar(&taPromPort, "prometheus-port", 8080, "Prometheus metrics port")
	telemetryAgentCmd.Flags().StringVar(&taNodeName, "node-name", "", "Name of the node")
	telemetryAgentCmd.Flags().StringVar(&taInstanceID, "instance-id", "", "Instance ID")
	telemetryAgentCmd.Flags().StringVar(&taSmartSource, "smart-source", nvmesmart.SourceIoctl, "Source of NVMe SMART logs (ioctl, cli)")
	telemetryAgentCmd.Flags().StringVar(&taSysfsDir, "nvme-sysfs-dir", nvmesmart.DefaultSysfsDir, "Directory listing NVMe controllers")
	telemetryAgentCmd.Flags().Int64Var(&taLifetimeUsedTh, "lifetime-used-threshold", 80, "Percentage used above which a lifetime alert is raised")
}

func validateTelemetryAgentConfig(config telemetry.TelemetryAgentConfig) {
	missingParams := false

	if config.Target == "" {
		fmt.Println("Warning: --target or METRICS_TARGET must be set")
		missingParams = true
	}

	if config.Interval <= 0 {
		fmt.Println("Warning: --interval must be a positive number of seconds")
		missingParams = true
	}

	if config.SmartSource != nvmesmart.SourceIoctl && config.SmartSource != nvmesmart.SourceCLI {
		fmt.Printf("Warning: unknown smart source %q\n", config.SmartSource)
		missingParams = true
	}

	if missingParams {
		fmt.Println("One or more required parameters are missing. Please provide them through flags or environment variables.")
		os.Exit(1)
	}
}
