// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package sysinfo

import (
	"regexp"

	"github.com/jaypipes/ghw"
	"github.com/rs/zerolog/log"
)

// NVMeNamespace describes one NVMe block device and the controller behind it.
type NVMeNamespace struct {
	Name       string `json:"name"`
	Controller string `json:"controller"`
	Model      string `json:"model"`
	Serial     string `json:"serial"`
	SizeBytes  uint64 `json:"size_bytes"`
}

var (
	blockInfo = func() (*ghw.BlockInfo, error) {
		return ghw.Block()
	}

	nvmeNamespaceName = regexp.MustCompile(`^(nvme\d+)n\d+$`)
)

// CollectNVMeInventory lists NVMe namespaces with model and serial so the
// receiver can tie a controller's SMART log to a physical drive.
func CollectNVMeInventory() []NVMeNamespace {
	results := make([]NVMeNamespace, 0)

	info, err := blockInfo()
	if err != nil {
		log.Warn().Err(err).Msg("error reading block device inventory")
		return results
	}

	for _, d := range info.Disks {
		m := nvmeNamespaceName.FindStringSubmatch(d.Name)
		if m == nil {
			continue
		}
		results = append(results, NVMeNamespace{
			Name:       d.Name,
			Controller: m[1],
			Model:      d.Model,
			Serial:     d.SerialNumber,
			SizeBytes:  d.SizeBytes,
		})
	}

	return results
}
