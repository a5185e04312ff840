// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package nvmesmart

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is an optional unsigned counter. The zero Value is absent, which is
// not the same as a present zero: zero means healthy, absent means unknown.
type Value struct {
	V       uint64
	Present bool
}

// Some returns a present Value.
func Some(v uint64) Value {
	return Value{V: v, Present: true}
}

// Get returns the value and whether it is present.
func (v Value) Get() (uint64, bool) {
	return v.V, v.Present
}

// MarshalJSON encodes an absent Value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Present {
		return []byte("null"), nil
	}
	return strconv.AppendUint(nil, v.V, 10), nil
}

// UnmarshalJSON accepts null or an unsigned integer.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = Some(n)
	return nil
}

// SmartLog is the decoded SMART / Health Information log of one controller.
// Field names follow the nvme-cli JSON keys.
type SmartLog struct {
	Name string `json:"nvme_name"`

	// Critical Warning bitmask (byte 0). Bit 0 spare below threshold, bit 1
	// temperature threshold, bit 2 degraded reliability, bit 3 read-only
	// media, bit 4 volatile backup failed, bit 5 PMR read-only.
	CriticalWarning Value `json:"critical_warning"`
	// Composite Temperature in Kelvin (bytes 2:1).
	Temperature Value `json:"temperature"`
	AvailSpare  Value `json:"avail_spare"`
	SpareThresh Value `json:"spare_thresh"`
	// PercentUsed is a vendor estimate and may exceed 100.
	PercentUsed Value `json:"percent_used"`
	// Endurance Group Critical Warning Summary (byte 6).
	EnduranceGrpCriticalWarningSummary Value `json:"endurance_grp_critical_warning_summary"`

	// Data units are thousands of 512 byte units.
	DataUnitsRead      Value `json:"data_units_read"`
	DataUnitsWritten   Value `json:"data_units_written"`
	HostReadCommands   Value `json:"host_read_commands"`
	HostWriteCommands  Value `json:"host_write_commands"`
	ControllerBusyTime Value `json:"controller_busy_time"`
	PowerCycles        Value `json:"power_cycles"`
	PowerOnHours       Value `json:"power_on_hours"`
	UnsafeShutdowns    Value `json:"unsafe_shutdowns"`
	MediaErrors        Value `json:"media_errors"`
	NumErrLogEntries   Value `json:"num_err_log_entries"`

	WarningTempTime  Value `json:"warning_temp_time"`
	CriticalCompTime Value `json:"critical_comp_time"`

	// Temperature sensors report 0 when not implemented; those are absent.
	TemperatureSensor1 Value `json:"temperature_sensor_1"`
	TemperatureSensor2 Value `json:"temperature_sensor_2"`
	TemperatureSensor3 Value `json:"temperature_sensor_3"`
	TemperatureSensor4 Value `json:"temperature_sensor_4"`
	TemperatureSensor5 Value `json:"temperature_sensor_5"`
	TemperatureSensor6 Value `json:"temperature_sensor_6"`
	TemperatureSensor7 Value `json:"temperature_sensor_7"`
	TemperatureSensor8 Value `json:"temperature_sensor_8"`

	ThmTemp1TransCount Value `json:"thm_temp1_trans_count"`
	ThmTemp2TransCount Value `json:"thm_temp2_trans_count"`
	ThmTemp1TotalTime  Value `json:"thm_temp1_total_time"`
	ThmTemp2TotalTime  Value `json:"thm_temp2_total_time"`

	// Saturated names the 128-bit counters that did not fit into 64 bits and
	// were reported as the maximum uint64.
	Saturated []string `json:"saturated,omitempty"`
}

// Field is one named value of a SmartLog.
type Field struct {
	Name  string
	Value Value
}

type fieldRef struct {
	name  string
	value *Value
}

func (l *SmartLog) refs() []fieldRef {
	return []fieldRef{
		{"critical_warning", &l.CriticalWarning},
		{"temperature", &l.Temperature},
		{"avail_spare", &l.AvailSpare},
		{"spare_thresh", &l.SpareThresh},
		{"percent_used", &l.PercentUsed},
		{"endurance_grp_critical_warning_summary", &l.EnduranceGrpCriticalWarningSummary},
		{"data_units_read", &l.DataUnitsRead},
		{"data_units_written", &l.DataUnitsWritten},
		{"host_read_commands", &l.HostReadCommands},
		{"host_write_commands", &l.HostWriteCommands},
		{"controller_busy_time", &l.ControllerBusyTime},
		{"power_cycles", &l.PowerCycles},
		{"power_on_hours", &l.PowerOnHours},
		{"unsafe_shutdowns", &l.UnsafeShutdowns},
		{"media_errors", &l.MediaErrors},
		{"num_err_log_entries", &l.NumErrLogEntries},
		{"warning_temp_time", &l.WarningTempTime},
		{"critical_comp_time", &l.CriticalCompTime},
		{"temperature_sensor_1", &l.TemperatureSensor1},
		{"temperature_sensor_2", &l.TemperatureSensor2},
		{"temperature_sensor_3", &l.TemperatureSensor3},
		{"temperature_sensor_4", &l.TemperatureSensor4},
		{"temperature_sensor_5", &l.TemperatureSensor5},
		{"temperature_sensor_6", &l.TemperatureSensor6},
		{"temperature_sensor_7", &l.TemperatureSensor7},
		{"temperature_sensor_8", &l.TemperatureSensor8},
		{"thm_temp1_trans_count", &l.ThmTemp1TransCount},
		{"thm_temp2_trans_count", &l.ThmTemp2TransCount},
		{"thm_temp1_total_time", &l.ThmTemp1TotalTime},
		{"thm_temp2_total_time", &l.ThmTemp2TotalTime},
	}
}

// Fields returns every field in log page order, present or not.
func (l SmartLog) Fields() []Field {
	refs := l.refs()
	fields := make([]Field, len(refs))
	for i, ref := range refs {
		fields[i] = Field{Name: ref.name, Value: *ref.value}
	}
	return fields
}

// TemperatureSensors returns the eight auxiliary sensors in order.
func (l SmartLog) TemperatureSensors() [8]Value {
	return [8]Value{
		l.TemperatureSensor1, l.TemperatureSensor2, l.TemperatureSensor3, l.TemperatureSensor4,
		l.TemperatureSensor5, l.TemperatureSensor6, l.TemperatureSensor7, l.TemperatureSensor8,
	}
}
