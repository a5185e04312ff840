// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/nvmesmart"
)

var (
	slSmartSource string
	slSysfsDir    string
	slPretty      bool
)

var smartLogCmd = &cobra.Command{
	Use:   "smart-log",
	Short: "Read the SMART / Health log of every NVMe controller once and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		collector := nvmesmart.NewCollector(getEnv("SMART_SOURCE", slSmartSource))
		collector.SysfsDir = getEnv("NVME_SYSFS_DIR", slSysfsDir)

		log.Info().Str("smart_source", collector.Source).Str("nvme_sysfs_dir", collector.SysfsDir).Msg("configuration_loaded")

		data, err := marshalSmartLogs(collector.Collect(), slPretty)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func marshalSmartLogs(logs []nvmesmart.SmartLog, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(logs, "", "  ")
	}
	return json.Marshal(logs)
}

func init() {
	smartLogCmd.Flags().StringVar(&slSmartSource, "smart-source", nvmesmart.SourceIoctl, "Source of NVMe SMART logs (ioctl, cli)")
	smartLogCmd.Flags().StringVar(&slSysfsDir, "nvme-sysfs-dir", nvmesmart.DefaultSysfsDir, "Directory listing NVMe controllers")
	smartLogCmd.Flags().BoolVar(&slPretty, "pretty", false, "Indent the JSON output")
}
