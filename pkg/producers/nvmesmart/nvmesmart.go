// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package nvmesmart

import (
	"errors"

	"github.com/rs/zerolog/log"
)

// Sources a Collector can read health logs from.
const (
	SourceIoctl = "ioctl"
	SourceCLI   = "cli"
)

// Collector gathers one SmartLog per discovered controller.
type Collector struct {
	SysfsDir string
	DevDir   string
	Source   string

	fetch   func(devicePath string) ([]byte, error)
	readCLI func(ctrl Controller) (SmartLog, error)
}

// NewCollector returns a Collector for the given source with host defaults.
func NewCollector(source string) *Collector {
	if source == SourceCLI && !checkNVMeCliInstalled() {
		log.Warn().Msg("nvme-cli is not installed, falling back to admin passthrough")
		source = SourceIoctl
	}
	if source != SourceCLI {
		source = SourceIoctl
	}

	return &Collector{
		SysfsDir: DefaultSysfsDir,
		DevDir:   DefaultDevDir,
		Source:   source,
		fetch:    FetchLog,
		readCLI:  collectSmartLogFromCLI,
	}
}

// Collect queries every controller in discovery order. A controller that
// fails is logged and left out; the others are still collected. The result
// is empty, not nil, when nothing could be read.
func (c *Collector) Collect() []SmartLog {
	results := make([]SmartLog, 0)

	for _, ctrl := range Discover(c.SysfsDir, c.DevDir) {
		smartLog, err := c.query(ctrl)
		if err != nil {
			collectFailures.WithLabelValues(ctrl.Name, failureClass(err)).Inc()
			log.Error().Err(err).Str("controller", ctrl.Name).Str("device", ctrl.DevicePath).Msg("failed to fetch smart log")
			continue
		}
		if len(smartLog.Saturated) > 0 {
			log.Warn().Str("controller", ctrl.Name).Strs("fields", smartLog.Saturated).Msg("128-bit counters saturated at 64 bits")
		}
		results = append(results, smartLog)
	}

	return results
}

func (c *Collector) query(ctrl Controller) (SmartLog, error) {
	if c.Source == SourceCLI {
		return c.readCLI(ctrl)
	}

	raw, err := c.fetch(ctrl.DevicePath)
	if err != nil {
		return SmartLog{}, err
	}
	return Decode(ctrl.Name, raw)
}

func failureClass(err error) string {
	var statusErr *StatusError
	var deviceErr *DeviceError
	switch {
	case errors.As(err, &statusErr):
		return "status"
	case errors.As(err, &deviceErr):
		return "device"
	default:
		return "decode"
	}
}
