// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/coreos/go-systemd/v22/dbus"
	"github.com/stretchr/testify/assert"
)

type fakeConn struct {
	units  []dbus.UnitStatus
	err    error
	closed bool
	asked  []string
}

func (f *fakeConn) ListUnitsByNamesContext(_ context.Context, units []string) ([]dbus.UnitStatus, error) {
	f.asked = units
	return f.units, f.err
}

func (f *fakeConn) Close() {
	f.closed = true
}

func withSeams(t *testing.T, conn func(context.Context) (unitLister, error), systemctl func(context.Context, string) ([]byte, error)) {
	t.Helper()
	origConn, origSystemctl := newSystemdConn, runSystemctl
	newSystemdConn, runSystemctl = conn, systemctl
	t.Cleanup(func() {
		newSystemdConn, runSystemctl = origConn, origSystemctl
	})
}

func TestCollectStatusDBus(t *testing.T) {
	conn := &fakeConn{units: []dbus.UnitStatus{
		{Name: "sshd.service", ActiveState: "active"},
		{Name: "cron.timer", ActiveState: "inactive"},
	}}
	withSeams(t,
		func(context.Context) (unitLister, error) { return conn, nil },
		func(context.Context, string) ([]byte, error) {
			t.Fatal("systemctl must not run when dbus answered")
			return nil, nil
		},
	)

	got := CollectStatus(context.Background(), []string{"sshd", "cron.timer"})
	assert.Equal(t, []Status{
		{ServiceName: "sshd", Status: "active"},
		{ServiceName: "cron.timer", Status: "inactive"},
	}, got)
	assert.Equal(t, []string{"sshd.service", "cron.timer"}, conn.asked)
	assert.True(t, conn.closed)
}

func TestCollectStatusFallsBackToSystemctl(t *testing.T) {
	withSeams(t,
		func(context.Context) (unitLister, error) { return nil, errors.New("no bus") },
		func(_ context.Context, service string) ([]byte, error) {
			switch service {
			case "nginx":
				return []byte("active\n"), nil
			case "missing":
				return []byte("inactive\n"), &exec.ExitError{}
			case "silent":
				return nil, nil
			}
			return nil, exec.ErrNotFound
		},
	)

	got := CollectStatus(context.Background(), []string{"nginx", "missing", "silent", "broken"})
	assert.Equal(t, []Status{
		{ServiceName: "nginx", Status: "active"},
		{ServiceName: "missing", Status: "inactive"},
		{ServiceName: "silent", Status: "unknown"},
		{ServiceName: "broken", Status: "error"},
	}, got)
}

func TestCollectStatusEmpty(t *testing.T) {
	assert.Empty(t, CollectStatus(context.Background(), nil))
}
