// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package nvmesmart

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	smartLogGaugeVec = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nvme_smart_log",
			Help: "NVMe SMART / Health log fields by controller",
		},
		[]string{"controller", "field", "node", "instance"},
	)

	temperatureCelsiusGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nvme_temperature_celsius",
			Help: "NVMe composite temperature in Celsius",
		},
		[]string{"controller", "node", "instance"},
	)

	collectFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nvme_smart_collect_failures_total",
			Help: "Failed SMART log queries by controller and failure class",
		},
		[]string{"controller", "class"},
	)
)

// published remembers which controllers were exported per node and instance,
// so a controller that drops out of a pass also drops out of the vectors.
var (
	publishedMu sync.Mutex
	published   = map[[2]string]map[string]struct{}{}
)

func init() {
	prometheus.MustRegister(smartLogGaugeVec)
	prometheus.MustRegister(temperatureCelsiusGauge)
	prometheus.MustRegister(collectFailures)
}

// PublishToPrometheus exports every present field. Absent fields, and every
// series of a controller missing from logs, are removed from the vectors so a
// stale reading never stands in for an unknown one.
func PublishToPrometheus(logs []SmartLog, nodeName, instanceID string) {
	publishedMu.Lock()
	defer publishedMu.Unlock()

	key := [2]string{nodeName, instanceID}
	current := make(map[string]struct{}, len(logs))
	for _, l := range logs {
		current[l.Name] = struct{}{}
	}
	for name := range published[key] {
		if _, ok := current[name]; !ok {
			dropController(name, nodeName, instanceID)
		}
	}
	published[key] = current

	for _, l := range logs {
		for _, f := range l.Fields() {
			labels := prometheus.Labels{
				"controller": l.Name,
				"field":      f.Name,
				"node":       nodeName,
				"instance":   instanceID,
			}
			if v, ok := f.Value.Get(); ok {
				smartLogGaugeVec.With(labels).Set(float64(v))
			} else {
				smartLogGaugeVec.Delete(labels)
			}
		}

		labels := prometheus.Labels{
			"controller": l.Name,
			"node":       nodeName,
			"instance":   instanceID,
		}
		if k, ok := l.Temperature.Get(); ok && k > 0 {
			temperatureCelsiusGauge.With(labels).Set(float64(k) - 273.15)
		} else {
			temperatureCelsiusGauge.Delete(labels)
		}
	}
}

func dropController(name, nodeName, instanceID string) {
	labels := prometheus.Labels{
		"controller": name,
		"node":       nodeName,
		"instance":   instanceID,
	}
	smartLogGaugeVec.DeletePartialMatch(labels)
	temperatureCelsiusGauge.Delete(labels)
}
