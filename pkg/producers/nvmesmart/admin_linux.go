// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package nvmesmart

import (
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// nvmeIoctlAdminCmd is NVME_IOCTL_ADMIN_CMD from include/uapi/linux/nvme_ioctl.h,
// _IOWR('N', 0x41, struct nvme_admin_cmd).
//
// Bit layout: direction(3=read|write) << 30 | size(72) << 16 | type('N') << 8 | nr(0x41)
const nvmeIoctlAdminCmd = 0xC0484E41

// adminCommand mirrors struct nvme_passthru_cmd. All members are naturally
// aligned so the Go layout matches the 72 byte C layout.
type adminCommand struct {
	opcode      uint8
	flags       uint8
	rsvd1       uint16
	nsid        uint32
	cdw2        uint32
	cdw3        uint32
	metadata    uint64
	addr        uint64
	metadataLen uint32
	dataLen     uint32
	cdw10       uint32
	cdw11       uint32
	cdw12       uint32
	cdw13       uint32
	cdw14       uint32
	cdw15       uint32
	timeoutMs   uint32
	result      uint32
}

// adminIoctl submits cmd on fd and returns the NVMe completion status.
var adminIoctl = func(fd uintptr, cmd *adminCommand) (uint32, error) {
	r1, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		fd,
		uintptr(nvmeIoctlAdminCmd),
		uintptr(unsafe.Pointer(cmd)),
	)
	if errno != 0 {
		return 0, errno
	}
	return uint32(r1), nil
}

// FetchLog reads the raw SMART / Health log page from the controller at
// devicePath. The device is opened read-write because the kernel refuses
// admin passthrough on read-only descriptors.
func FetchLog(devicePath string) ([]byte, error) {
	f, err := os.OpenFile(devicePath, os.O_RDWR, 0)
	if err != nil {
		return nil, &DeviceError{Op: "open", Path: devicePath, Err: err}
	}
	defer f.Close()

	buf := make([]byte, SmartLogSize)

	cmd := adminCommand{
		opcode:    adminGetLogPage,
		nsid:      NamespaceAll,
		addr:      uint64(uintptr(unsafe.Pointer(&buf[0]))),
		dataLen:   uint32(len(buf)),
		cdw10:     SmartLogCDW10(),
		cdw11:     0,
		timeoutMs: uint32(AdminTimeout.Milliseconds()),
	}

	status, err := adminIoctl(f.Fd(), &cmd)
	runtime.KeepAlive(buf)
	if err != nil {
		return nil, &DeviceError{Op: "ioctl", Path: devicePath, Err: err}
	}
	if status != 0 {
		return nil, &StatusError{Path: devicePath, Status: status}
	}

	return buf, nil
}
