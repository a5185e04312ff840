// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package nvmesmart

import (
	"fmt"
)

// HealthEvent summarises one controller's SMART log for event consumers.
type HealthEvent struct {
	NodeName   string            `json:"node_name"`
	InstanceID string            `json:"instance_id"`
	Controller string            `json:"controller"`
	EventType  string            `json:"event_type"` // e.g. 'health', 'health_alert', 'lifetime_alert'
	Severity   string            `json:"severity"`   // e.g. 'info', 'warning', 'critical'
	Message    string            `json:"message"`
	Details    map[string]string `json:"details"`
}

// criticalWarningBits names the bits of the Critical Warning field.
var criticalWarningBits = []string{
	"available spare below threshold",
	"temperature threshold exceeded",
	"reliability degraded",
	"media read-only",
	"volatile memory backup failed",
	"persistent memory region read-only",
}

// EvaluateHealth derives a HealthEvent from a SmartLog. lifetimeUsedThreshold
// is a percentage; PercentUsed above it raises a lifetime alert.
func EvaluateHealth(l SmartLog, nodeName, instanceID string, lifetimeUsedThreshold int64) HealthEvent {
	details := make(map[string]string)
	for _, f := range l.Fields() {
		if v, ok := f.Value.Get(); ok {
			details[f.Name] = fmt.Sprintf("%d", v)
		}
	}

	event := HealthEvent{
		NodeName:   nodeName,
		InstanceID: instanceID,
		Controller: l.Name,
		EventType:  "health",
		Severity:   "info",
		Message:    "SMART log collected successfully.",
		Details:    details,
	}

	if used, ok := l.PercentUsed.Get(); ok && lifetimeUsedThreshold >= 0 && used > uint64(lifetimeUsedThreshold) {
		details["percent_used"] = fmt.Sprintf("%d%% (Warning: Exceeds threshold of %d%%)", used, lifetimeUsedThreshold)
		event.EventType = "lifetime_alert"
		event.Severity = "warning"
		event.Message = "SMART log indicates SSD nearing end of life."
	}

	spare, spareOK := l.AvailSpare.Get()
	thresh, threshOK := l.SpareThresh.Get()
	if spareOK && threshOK && spare < thresh {
		event.EventType = "health_alert"
		event.Severity = "warning"
		event.Message = fmt.Sprintf("SMART available spare %d%% is below threshold %d%%.", spare, thresh)
	}

	if media, ok := l.MediaErrors.Get(); ok && media > 0 {
		event.EventType = "health_alert"
		event.Severity = "warning"
		event.Message = "SMART log reports media and data integrity errors."
	}

	if cw, ok := l.CriticalWarning.Get(); ok && cw != 0 {
		var reasons []string
		for bit, reason := range criticalWarningBits {
			if cw&(1<<bit) != 0 {
				reasons = append(reasons, reason)
			}
		}
		event.EventType = "health_alert"
		event.Severity = "critical"
		event.Message = fmt.Sprintf("SMART critical warning 0x%02x: %v", cw, reasons)
	}

	return event
}
