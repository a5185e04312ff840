// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package nvmesmart

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrBufferSize is returned when a buffer handed to Decode is not exactly one
// SMART / Health log page long.
var ErrBufferSize = errors.New("smart log buffer has wrong size")

// Byte offsets of the SMART / Health Information log (NVMe Base Spec,
// Figure "SMART / Health Information Log Page"). All fields are little-endian.
const (
	offCriticalWarning    = 0
	offTemperature        = 1
	offAvailSpare         = 3
	offSpareThresh        = 4
	offPercentUsed        = 5
	offEnduranceGrpWarn   = 6
	offDataUnitsRead      = 32
	offDataUnitsWritten   = 48
	offHostReadCommands   = 64
	offHostWriteCommands  = 80
	offControllerBusyTime = 96
	offPowerCycles        = 112
	offPowerOnHours       = 128
	offUnsafeShutdowns    = 144
	offMediaErrors        = 160
	offNumErrLogEntries   = 176
	offWarningTempTime    = 192
	offCriticalCompTime   = 196
	offTemperatureSensors = 200
	offThmTemp1TransCount = 216
	offThmTemp2TransCount = 220
	offThmTemp1TotalTime  = 224
	offThmTemp2TotalTime  = 228
)

// Uint128 holds a 128-bit little-endian counter as two 64-bit halves.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

func readUint128(b []byte) Uint128 {
	return Uint128{
		Lo: binary.LittleEndian.Uint64(b[0:8]),
		Hi: binary.LittleEndian.Uint64(b[8:16]),
	}
}

// Saturate narrows u to 64 bits. Values that do not fit are clamped to
// math.MaxUint64 and reported with ok set to false.
func (u Uint128) Saturate() (v uint64, ok bool) {
	if u.Hi != 0 {
		return math.MaxUint64, false
	}
	return u.Lo, true
}

// Decode maps a raw SMART / Health log page to a SmartLog tagged with name.
func Decode(name string, buf []byte) (SmartLog, error) {
	if len(buf) != SmartLogSize {
		return SmartLog{}, fmt.Errorf("%w: got %d bytes, want %d", ErrBufferSize, len(buf), SmartLogSize)
	}

	le := binary.LittleEndian
	l := SmartLog{Name: name}

	l.CriticalWarning = Some(uint64(buf[offCriticalWarning]))
	l.Temperature = Some(uint64(le.Uint16(buf[offTemperature:])))
	l.AvailSpare = Some(uint64(buf[offAvailSpare]))
	l.SpareThresh = Some(uint64(buf[offSpareThresh]))
	l.PercentUsed = Some(uint64(buf[offPercentUsed]))
	l.EnduranceGrpCriticalWarningSummary = Some(uint64(buf[offEnduranceGrpWarn]))

	counters := []struct {
		name string
		off  int
		dst  *Value
	}{
		{"data_units_read", offDataUnitsRead, &l.DataUnitsRead},
		{"data_units_written", offDataUnitsWritten, &l.DataUnitsWritten},
		{"host_read_commands", offHostReadCommands, &l.HostReadCommands},
		{"host_write_commands", offHostWriteCommands, &l.HostWriteCommands},
		{"controller_busy_time", offControllerBusyTime, &l.ControllerBusyTime},
		{"power_cycles", offPowerCycles, &l.PowerCycles},
		{"power_on_hours", offPowerOnHours, &l.PowerOnHours},
		{"unsafe_shutdowns", offUnsafeShutdowns, &l.UnsafeShutdowns},
		{"media_errors", offMediaErrors, &l.MediaErrors},
		{"num_err_log_entries", offNumErrLogEntries, &l.NumErrLogEntries},
	}
	for _, c := range counters {
		v, ok := readUint128(buf[c.off : c.off+16]).Saturate()
		if !ok {
			l.Saturated = append(l.Saturated, c.name)
		}
		*c.dst = Some(v)
	}

	l.WarningTempTime = Some(uint64(le.Uint32(buf[offWarningTempTime:])))
	l.CriticalCompTime = Some(uint64(le.Uint32(buf[offCriticalCompTime:])))

	sensors := [8]*Value{
		&l.TemperatureSensor1, &l.TemperatureSensor2, &l.TemperatureSensor3, &l.TemperatureSensor4,
		&l.TemperatureSensor5, &l.TemperatureSensor6, &l.TemperatureSensor7, &l.TemperatureSensor8,
	}
	for i, dst := range sensors {
		// 0 means the sensor is not implemented.
		if k := le.Uint16(buf[offTemperatureSensors+2*i:]); k != 0 {
			*dst = Some(uint64(k))
		}
	}

	l.ThmTemp1TransCount = Some(uint64(le.Uint32(buf[offThmTemp1TransCount:])))
	l.ThmTemp2TransCount = Some(uint64(le.Uint32(buf[offThmTemp2TransCount:])))
	l.ThmTemp1TotalTime = Some(uint64(le.Uint32(buf[offThmTemp1TotalTime:])))
	l.ThmTemp2TotalTime = Some(uint64(le.Uint32(buf[offThmTemp2TotalTime:])))

	return l, nil
}
