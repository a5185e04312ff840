// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/config"
)

var (
	configFilePath string
	watchConfig    bool
)

var localProducerCmd = &cobra.Command{
	Use:   "local-producer",
	Short: "Local producer commands",
}

var useConfigCmd = &cobra.Command{
	Use:   "use-config",
	Short: "Start local producers using configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configFilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}

		if watchConfig {
			config.WatchConfig(config.ApplyServiceUpdates)
		}

		ctx, stop := signalContext()
		defer stop()

		var wg sync.WaitGroup

		for _, producer := range cfg.Producers {
			wg.Add(1)
			go config.StartProducers(ctx, producer, cfg.Global, &wg)
		}

		wg.Wait()
	},
}

func init() {
	useConfigCmd.Flags().StringVar(&configFilePath, "config", "", "Path to configuration file")
	useConfigCmd.Flags().BoolVar(&watchConfig, "watch", true, "Reload service lists when the configuration file changes")
	useConfigCmd.MarkFlagRequired("config")
	localProducerCmd.AddCommand(useConfigCmd)

	localProducerCmd.AddCommand(telemetryAgentCmd)
	localProducerCmd.AddCommand(smartLogCmd)
	localProducerCmd.AddCommand(udpListenerCmd)
}
