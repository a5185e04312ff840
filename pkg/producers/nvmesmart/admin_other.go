// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package nvmesmart

// FetchLog is only implemented on Linux.
func FetchLog(devicePath string) ([]byte, error) {
	return nil, &DeviceError{Op: "ioctl", Path: devicePath, Err: ErrUnsupportedPlatform}
}
