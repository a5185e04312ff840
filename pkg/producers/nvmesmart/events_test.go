// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package nvmesmart

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateHealthHealthy(t *testing.T) {
	l, err := Decode("nvme0", fixtureLog())
	require.NoError(t, err)

	event := EvaluateHealth(l, "node-a", "i-1", 80)
	assert.Equal(t, "info", event.Severity)
	assert.Equal(t, "health", event.EventType)
	assert.Equal(t, "nvme0", event.Controller)
	assert.Equal(t, "310", event.Details["temperature"])
	assert.NotContains(t, event.Details, "temperature_sensor_3")
}

func TestEvaluateHealthLifetime(t *testing.T) {
	l := SmartLog{Name: "nvme0", PercentUsed: Some(120)}

	event := EvaluateHealth(l, "node-a", "i-1", 80)
	assert.Equal(t, "warning", event.Severity)
	assert.Equal(t, "lifetime_alert", event.EventType)
	assert.Contains(t, event.Details["percent_used"], "120%")
}

func TestEvaluateHealthSpareBelowThreshold(t *testing.T) {
	l := SmartLog{Name: "nvme0", AvailSpare: Some(5), SpareThresh: Some(10)}

	event := EvaluateHealth(l, "node-a", "i-1", 80)
	assert.Equal(t, "warning", event.Severity)
	assert.Equal(t, "health_alert", event.EventType)
	assert.Contains(t, event.Message, "below threshold 10%")
}

func TestEvaluateHealthCriticalWarning(t *testing.T) {
	l := SmartLog{Name: "nvme0", CriticalWarning: Some(0x05), MediaErrors: Some(3)}

	event := EvaluateHealth(l, "node-a", "i-1", 80)
	assert.Equal(t, "critical", event.Severity)
	assert.Equal(t, "health_alert", event.EventType)
	assert.Contains(t, event.Message, "available spare below threshold")
	assert.Contains(t, event.Message, "reliability degraded")
	assert.NotContains(t, event.Message, "temperature threshold exceeded")
}

func TestPublishToPrometheusSkipsAbsent(t *testing.T) {
	l := SmartLog{Name: "nvme-prom", Temperature: Some(300), PowerOnHours: Some(10)}

	PublishToPrometheus([]SmartLog{l}, "node-a", "i-1")

	assert.Equal(t, 10.0, testutil.ToFloat64(smartLogGaugeVec.With(prometheus.Labels{
		"controller": "nvme-prom", "field": "power_on_hours", "node": "node-a", "instance": "i-1",
	})))
	assert.InDelta(t, 26.85, testutil.ToFloat64(temperatureCelsiusGauge.With(prometheus.Labels{
		"controller": "nvme-prom", "node": "node-a", "instance": "i-1",
	})), 0.001)

	// A later pass without the field drops the series.
	l.PowerOnHours = Value{}
	PublishToPrometheus([]SmartLog{l}, "node-a", "i-1")
	deleted := smartLogGaugeVec.Delete(prometheus.Labels{
		"controller": "nvme-prom", "field": "power_on_hours", "node": "node-a", "instance": "i-1",
	})
	assert.False(t, deleted)
}

func TestPublishToPrometheusDropsMissingController(t *testing.T) {
	ok := SmartLog{Name: "nvme-keep", Temperature: Some(300)}
	gone := SmartLog{Name: "nvme-gone", Temperature: Some(310), PowerOnHours: Some(7)}

	PublishToPrometheus([]SmartLog{ok, gone}, "node-b", "i-2")
	assert.InDelta(t, 36.85, testutil.ToFloat64(temperatureCelsiusGauge.With(prometheus.Labels{
		"controller": "nvme-gone", "node": "node-b", "instance": "i-2",
	})), 0.001)

	// nvme-gone failed this pass and is not in the result.
	PublishToPrometheus([]SmartLog{ok}, "node-b", "i-2")

	goneLabels := prometheus.Labels{"controller": "nvme-gone", "node": "node-b", "instance": "i-2"}
	assert.False(t, temperatureCelsiusGauge.Delete(goneLabels))
	assert.Equal(t, 0, smartLogGaugeVec.DeletePartialMatch(goneLabels))
	assert.True(t, temperatureCelsiusGauge.Delete(prometheus.Labels{"controller": "nvme-keep", "node": "node-b", "instance": "i-2"}))

	// An empty pass clears what is left.
	PublishToPrometheus([]SmartLog{ok}, "node-b", "i-2")
	PublishToPrometheus(nil, "node-b", "i-2")
	assert.Equal(t, 0, smartLogGaugeVec.DeletePartialMatch(prometheus.Labels{"node": "node-b", "instance": "i-2"}))
}
