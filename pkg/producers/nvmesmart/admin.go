// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package nvmesmart

import (
	"errors"
	"fmt"
	"time"
)

// Get Log Page admin command parameters for the SMART / Health Information
// log. Values follow the NVMe Base Specification.
const (
	adminGetLogPage    = 0x02
	logPageSmartHealth = 0x02

	// NamespaceAll addresses the controller as a whole. The SMART log is
	// controller scoped; any other nsid except 0 is rejected by firmware.
	NamespaceAll uint32 = 0xFFFFFFFF

	// AdminTimeout is handed to the kernel with every command.
	AdminTimeout = 1000 * time.Millisecond

	// SmartLogSize is the length of the SMART / Health Information log page.
	SmartLogSize = 512
)

var (
	// ErrUnsupportedPlatform is returned where no NVMe passthrough exists.
	ErrUnsupportedPlatform = errors.New("nvme admin passthrough is not supported on this platform")
)

// DeviceError is an OS level failure: the device node could not be opened or
// the passthrough call itself failed.
type DeviceError struct {
	Op   string
	Path string
	Err  error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("nvme %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// StatusError is a protocol level failure: the controller completed the
// command with a nonzero status.
type StatusError struct {
	Path   string
	Status uint32
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("nvme admin command failed on %s, status=%#x", e.Path, e.Status)
}

// GetLogPageCDW10 encodes command dword 10 of Get Log Page: the log page
// identifier in bits 7:0 and the number of dwords minus one in bits 31:16.
func GetLogPageCDW10(logPageID uint8, length int) uint32 {
	numd := uint32(length/4) - 1
	return uint32(logPageID) | numd<<16
}

// SmartLogCDW10 is dword 10 for a full SMART / Health log read (0x007F0002).
func SmartLogCDW10() uint32 {
	return GetLogPageCDW10(logPageSmartHealth, SmartLogSize)
}
