// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package nvmesmart

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultSysfsDir lists one entry per NVMe controller known to the kernel.
	DefaultSysfsDir = "/sys/class/nvme"
	// DefaultDevDir holds the character device node of every controller.
	DefaultDevDir = "/dev"
)

// Controller identifies one NVMe controller, e.g. nvme0 at /dev/nvme0.
type Controller struct {
	Name       string `json:"name"`
	DevicePath string `json:"device_path"`
}

// Discover lists sysfsDir and maps every entry to its device node under devDir.
// A missing or unreadable directory means no controllers are present.
func Discover(sysfsDir, devDir string) []Controller {
	entries, err := os.ReadDir(sysfsDir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("dir", sysfsDir).Msg("no nvme controllers present")
		} else {
			log.Warn().Err(err).Str("dir", sysfsDir).Msg("error listing nvme controllers")
		}
		return []Controller{}
	}

	controllers := make([]Controller, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		controllers = append(controllers, Controller{
			Name:       name,
			DevicePath: filepath.Join(devDir, name),
		})
	}

	return controllers
}
