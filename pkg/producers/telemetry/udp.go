// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"encoding/json"
	"fmt"
	"net"
)

// maxDatagramSize is the largest UDP payload over IPv4.
const maxDatagramSize = 65507

// UDPSender ships payloads as single datagrams from an ephemeral local port.
type UDPSender struct {
	conn   net.PacketConn
	target *net.UDPAddr
}

func NewUDPSender(target string) (*UDPSender, error) {
	addr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("error resolving target %s: %w", target, err)
	}

	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, fmt.Errorf("error creating udp socket: %w", err)
	}

	return &UDPSender{conn: conn, target: addr}, nil
}

// Send encodes v as JSON and writes it in one datagram. It returns the
// number of bytes sent.
func (s *UDPSender) Send(v interface{}) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("error marshalling payload: %w", err)
	}
	if len(data) > maxDatagramSize {
		return 0, fmt.Errorf("payload of %d bytes exceeds udp datagram limit", len(data))
	}

	n, err := s.conn.WriteTo(data, s.target)
	if err != nil {
		return n, fmt.Errorf("error sending udp packet to %s: %w", s.target, err)
	}
	return n, nil
}

func (s *UDPSender) Target() string {
	return s.target.String()
}

func (s *UDPSender) Close() error {
	return s.conn.Close()
}
