// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUDPSenderSend(t *testing.T) {
	server, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer server.Close()

	sender, err := NewUDPSender(server.LocalAddr().String())
	require.NoError(t, err)
	defer sender.Close()

	payload := buildPayload(context.Background(), fakeSources(), TelemetryAgentConfig{NodeName: "node-a"}, nil)
	n, err := sender.Send(payload)
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	require.NoError(t, server.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, maxDatagramSize)
	m, _, err := server.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, n, m)

	var got Payload
	require.NoError(t, json.Unmarshal(buf[:m], &got))
	assert.Equal(t, payload.CollectionID, got.CollectionID)
	assert.Equal(t, "nvme0", got.SmartLog[0].Name)
}

func TestUDPSenderBadTarget(t *testing.T) {
	_, err := NewUDPSender("not-a-target")
	assert.Error(t, err)
}

func TestUDPSenderOversizedPayload(t *testing.T) {
	sender, err := NewUDPSender("127.0.0.1:9")
	require.NoError(t, err)
	defer sender.Close()

	_, err = sender.Send(strings.Repeat("x", maxDatagramSize))
	assert.ErrorContains(t, err, "exceeds udp datagram limit")
}

func TestListenerRecordsPayloads(t *testing.T) {
	out := filepath.Join(t.TempDir(), "received.jsonl")
	listener, err := NewListener(UDPListenerConfig{ListenAddr: "127.0.0.1:0", OutputFile: out})
	require.NoError(t, err)
	defer listener.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- listener.Serve(ctx) }()

	sender, err := NewUDPSender(listener.Addr().String())
	require.NoError(t, err)
	defer sender.Close()

	_, err = sender.Send(map[string]int{"a": 1})
	require.NoError(t, err)
	_, err = sender.conn.WriteTo([]byte("not json"), sender.target)
	require.NoError(t, err)
	_, err = sender.conn.WriteTo([]byte("{\n  \"b\": 2\n}"), sender.target)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(out)
		return err == nil && strings.Count(string(data), "\n") == 2
	}, 2*time.Second, 20*time.Millisecond)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n{\"b\":2}\n", string(data))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
}
