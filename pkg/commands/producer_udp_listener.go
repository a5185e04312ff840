// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/telemetry"
)

var (
	ulListenAddr string
	ulOutputFile string
)

var udpListenerCmd = &cobra.Command{
	Use:   "udp-listener",
	Short: "Receive telemetry payloads over UDP and append them to a file",
	Run: func(cmd *cobra.Command, args []string) {
		config := telemetry.UDPListenerConfig{
			ListenAddr: getEnv("LISTEN_ADDR", ulListenAddr),
			OutputFile: getEnv("OUTPUT_FILE", ulOutputFile),
		}

		log.Info().
			Str("listen_addr", config.ListenAddr).
			Str("output_file", config.OutputFile).
			Msg("configuration_loaded")

		listener, err := telemetry.NewListener(config)
		if err != nil {
			log.Fatal().Err(err).Msg("error starting udp listener")
		}
		defer listener.Close()

		ctx, stop := signalContext()
		defer stop()

		if err := listener.Serve(ctx); err != nil {
			log.Fatal().Err(err).Msg("udp listener failed")
		}
	},
}

func init() {
	udpListenerCmd.Flags().StringVar(&ulListenAddr, "listen-addr", "127.0.0.1:1555", "UDP address to listen on")
	udpListenerCmd.Flags().StringVar(&ulOutputFile, "output-file", "received_metrics.jsonl", "File receiving one JSON payload per line")
}
