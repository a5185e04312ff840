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

package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/nvmesmart"
	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/sysinfo"
)

// Agent collects one payload per interval and ships it to the collector.
type Agent struct {
	cfg TelemetryAgentConfig
	src sources

	mu       sync.RWMutex
	services []string
}

func NewAgent(cfg TelemetryAgentConfig) *Agent {
	smart := nvmesmart.NewCollector(cfg.SmartSource)
	if cfg.NVMeSysfsDir != "" {
		smart.SysfsDir = cfg.NVMeSysfsDir
	}

	return &Agent{
		cfg:      cfg,
		src:      defaultSources(smart),
		services: append([]string(nil), cfg.Services...),
	}
}

// SetServices replaces the list of services polled from the next cycle on.
func (a *Agent) SetServices(services []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.services = append([]string(nil), services...)
	log.Info().Strs("services", a.services).Msg("service list updated")
}

func (a *Agent) Services() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.services...)
}

// Collect runs a single collection pass.
func (a *Agent) Collect(ctx context.Context) Payload {
	return buildPayload(ctx, a.src, a.cfg, a.Services())
}

// Run collects and sends a payload every interval until ctx is done. Cycles
// never overlap: the next tick is only read after the previous pass returns.
func (a *Agent) Run(ctx context.Context) error {
	if a.cfg.Interval <= 0 {
		return fmt.Errorf("interval must be a positive number of seconds, got %d", a.cfg.Interval)
	}

	sender, err := NewUDPSender(a.cfg.Target)
	if err != nil {
		return err
	}
	defer sender.Close()

	var nc *nats.Conn
	if a.cfg.UseNats {
		nc, err = nats.Connect(a.cfg.NatsURL)
		if err != nil {
			return fmt.Errorf("error connecting to NATS: %w", err)
		}
		defer nc.Close()
	}

	if a.cfg.Prometheus {
		StartPrometheusServer(a.cfg.PrometheusPort)
	}

	log.Info().Str("target", sender.Target()).Int("interval", a.cfg.Interval).Msg("telemetry agent started")

	ticker := time.NewTicker(time.Duration(a.cfg.Interval) * time.Second)
	defer ticker.Stop()

	for {
		a.cycle(ctx, sender, nc)

		select {
		case <-ctx.Done():
			log.Info().Msg("telemetry agent stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (a *Agent) cycle(ctx context.Context, sender *UDPSender, nc *nats.Conn) {
	payload := a.Collect(ctx)

	if a.cfg.Prometheus {
		nvmesmart.PublishToPrometheus(payload.SmartLog, a.cfg.NodeName, a.cfg.InstanceID)
		sysinfo.PublishToPrometheus(payload.hostInfo(), payload.DiskUsage, payload.Network, a.cfg.NodeName, a.cfg.InstanceID)
	}

	if nc != nil {
		if err := PublishToNATS(nc, payload, a.cfg); err != nil {
			log.Error().Err(err).Msg("error publishing to NATS")
		}
	}

	n, err := sender.Send(payload)
	if err != nil {
		log.Error().Err(err).Msg("error sending payload")
		return
	}
	log.Debug().
		Str("collection_id", payload.CollectionID).
		Int("bytes", n).
		Int("controllers", len(payload.SmartLog)).
		Msg("payload sent")
}

var (
	promServersMu sync.Mutex
	promServers   = map[int]bool{}
)

// StartPrometheusServer serves the default registry on port. Agents sharing a
// port share one server.
func StartPrometheusServer(port int) {
	promServersMu.Lock()
	defer promServersMu.Unlock()
	if promServers[port] {
		log.Debug().Int("port", port).Msg("prometheus metrics server already running")
		return
	}
	promServers[port] = true

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		log.Info().Msgf("starting prometheus metrics server on :%d", port)
		err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
		if err != nil {
			log.Fatal().Err(err).Msg("error starting prometheus metrics server")
		}
	}()
}
