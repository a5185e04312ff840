// Copyright (C) 2024 Clyso GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package commands

import (
	"bytes"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/nvmesmart"
	"github.com/cobaltcore-dev/tinycollectd/pkg/producers/telemetry"
)

func TestGetEnv(t *testing.T) {
	key := "TEST_KEY"
	fallback := "default_value"

	// Test when the environment variable is not set
	value := getEnv(key, fallback)
	assert.Equal(t, fallback, value)

	// Test when the environment variable is set
	expectedValue := "expected_value"
	os.Setenv(key, expectedValue)
	value = getEnv(key, fallback)
	assert.Equal(t, expectedValue, value)

	// Clean up
	os.Unsetenv(key)
}

func TestGetEnvStringSlice(t *testing.T) {
	key := "TEST_SERVICES"

	assert.Equal(t, []string{"sshd"}, getEnvStringSlice(key, []string{"sshd"}))

	t.Setenv(key, "sshd, kubelet,,chronyd ")
	assert.Equal(t, []string{"sshd", "kubelet", "chronyd"}, getEnvStringSlice(key, nil))

	t.Setenv(key, "")
	assert.Empty(t, getEnvStringSlice(key, []string{"sshd"}))
}

func TestGetEnvIntInvalid(t *testing.T) {
	t.Setenv("TEST_INTERVAL", "soon")
	assert.Equal(t, 10, getEnvInt("TEST_INTERVAL", 10))

	t.Setenv("TEST_INTERVAL", "30")
	assert.Equal(t, 30, getEnvInt("TEST_INTERVAL", 10))
}

func TestMergeTelemetryAgentConfigWithEnv(t *testing.T) {
	t.Setenv("METRICS_TARGET", "10.0.0.5:1555")
	t.Setenv("SERVICES", "sshd,kubelet")
	t.Setenv("SMART_SOURCE", "cli")
	t.Setenv("LIFETIME_USED_THRESHOLD", "90")

	cfg := mergeTelemetryAgentConfigWithEnv(telemetry.TelemetryAgentConfig{
		Target:   "127.0.0.1:1555",
		Interval: 10,
		NodeName: "flag-node",
	})

	assert.Equal(t, "10.0.0.5:1555", cfg.Target)
	assert.Equal(t, 10, cfg.Interval)
	assert.Equal(t, []string{"sshd", "kubelet"}, cfg.Services)
	assert.Equal(t, "cli", cfg.SmartSource)
	assert.Equal(t, int64(90), cfg.LifetimeUsedThreshold)
	assert.Equal(t, "flag-node", cfg.NodeName)
}

func TestSetUpLogs(t *testing.T) {
	require.NoError(t, setUpLogs("debug"))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	assert.Error(t, setUpLogs("loud"))

	require.NoError(t, setUpLogs("warn"))
}

func TestMarshalSmartLogsEmpty(t *testing.T) {
	data, err := marshalSmartLogs([]nvmesmart.SmartLog{}, false)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestSmartLogCommandWithoutControllers(t *testing.T) {
	t.Setenv("NVME_SYSFS_DIR", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"local-producer", "smart-log"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "[]\n", out.String())
}
