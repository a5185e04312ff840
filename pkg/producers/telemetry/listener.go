// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// Listener receives payload datagrams and appends each valid one as a single
// JSON line to an output file.
type Listener struct {
	conn net.PacketConn
	out  *os.File
	mu   sync.Mutex
}

func NewListener(cfg UDPListenerConfig) (*Listener, error) {
	conn, err := net.ListenPacket("udp", cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("error listening on %s: %w", cfg.ListenAddr, err)
	}

	out, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error opening output file %s: %w", cfg.OutputFile, err)
	}

	return &Listener{conn: conn, out: out}, nil
}

func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Serve reads datagrams until ctx is done or the socket is closed.
func (l *Listener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.conn.Close()
	}()

	log.Info().Str("addr", l.Addr().String()).Str("output", l.out.Name()).Msg("udp listener started")

	buf := make([]byte, maxDatagramSize)
	for {
		n, from, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("error reading datagram: %w", err)
		}

		if err := l.record(buf[:n]); err != nil {
			log.Warn().Err(err).Str("from", from.String()).Int("bytes", n).Msg("dropping datagram")
			continue
		}
		log.Debug().Str("from", from.String()).Int("bytes", n).Msg("payload recorded")
	}
}

func (l *Listener) record(data []byte) error {
	var line bytes.Buffer
	if err := json.Compact(&line, data); err != nil {
		return fmt.Errorf("datagram is not valid JSON: %w", err)
	}
	line.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.out.Write(line.Bytes())
	return err
}

func (l *Listener) Close() error {
	cerr := l.conn.Close()
	if err := l.out.Close(); err != nil {
		return err
	}
	if cerr != nil && !errors.Is(cerr, net.ErrClosed) {
		return cerr
	}
	return nil
}
