// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package nvmesmart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog/log"
)

func checkNVMeCliInstalled() bool {
	_, err := exec.LookPath("nvme")
	return err == nil
}

// runNVMeSmartLog runs nvme smart-log against a device and returns its JSON output.
var runNVMeSmartLog = func(devicePath string) ([]byte, error) {
	out, err := exec.Command("nvme", "smart-log", devicePath, "-o", "json").Output()
	if err != nil {
		return nil, fmt.Errorf("error running nvme smart-log: %w", err)
	}
	return out, nil
}

// collectSmartLogFromCLI reads a controller's health log through nvme-cli
// instead of the admin passthrough.
func collectSmartLogFromCLI(ctrl Controller) (SmartLog, error) {
	out, err := runNVMeSmartLog(ctrl.DevicePath)
	if err != nil {
		return SmartLog{}, &DeviceError{Op: "nvme smart-log", Path: ctrl.DevicePath, Err: err}
	}
	return parseNVMeCliSmartLog(ctrl.Name, out)
}

// parseNVMeCliSmartLog maps nvme-cli JSON onto a SmartLog. Keys that are
// missing or not unsigned integers stay absent; nvme-cli versions disagree on
// which fields they print. Integers above 64 bits saturate.
func parseNVMeCliSmartLog(name string, data []byte) (SmartLog, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return SmartLog{}, fmt.Errorf("error parsing nvme smart-log JSON: %w", err)
	}

	l := SmartLog{Name: name}
	for _, ref := range l.refs() {
		msg, ok := raw[ref.name]
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(string(bytes.TrimSpace(msg)), 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			// 128-bit counters past 64 bits, clamped as Decode does.
			l.Saturated = append(l.Saturated, ref.name)
			*ref.value = Some(math.MaxUint64)
			continue
		}
		if err != nil {
			log.Debug().Str("controller", name).Str("field", ref.name).RawJSON("value", msg).Msg("ignoring non-integer nvme-cli field")
			continue
		}
		*ref.value = Some(v)
	}

	return l, nil
}
