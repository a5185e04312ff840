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
	"encoding/json"

	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/nvmesmart"
)

// publisher is the subset of *nats.Conn used here.
type publisher interface {
	Publish(subject string, data []byte) error
}

// PublishToNATS publishes the whole payload on subject and one health event
// per controller on subject + ".nvme".
func PublishToNATS(nc publisher, payload Payload, cfg TelemetryAgentConfig) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := nc.Publish(cfg.NatsSubject, data); err != nil {
		return err
	}

	for _, smartLog := range payload.SmartLog {
		event := nvmesmart.EvaluateHealth(smartLog, cfg.NodeName, cfg.InstanceID, cfg.LifetimeUsedThreshold)

		eventJSON, err := json.Marshal(event)
		if err != nil {
			return err
		}

		if err := nc.Publish(cfg.NatsSubject+".nvme", eventJSON); err != nil {
			return err
		}
	}

	return nil
}
