// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and tinycollectd contributors
//
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"
	"github.com/rs/zerolog/log"
)

// Status is the active state of one systemd unit, as printed by systemctl
// is-active: active, inactive, failed, activating, ... "error" means the
// state could not be queried.
type Status struct {
	ServiceName string `json:"service_name"`
	Status      string `json:"status"`
}

type unitLister interface {
	ListUnitsByNamesContext(ctx context.Context, units []string) ([]dbus.UnitStatus, error)
	Close()
}

var (
	newSystemdConn = func(ctx context.Context) (unitLister, error) {
		return dbus.NewSystemdConnectionContext(ctx)
	}
	runSystemctl = func(ctx context.Context, service string) ([]byte, error) {
		return exec.CommandContext(ctx, "systemctl", "is-active", service).Output()
	}
)

// CollectStatus reports the state of every named service, in order. It asks
// systemd over D-Bus and falls back to systemctl when the bus is unavailable.
func CollectStatus(ctx context.Context, services []string) []Status {
	results := make([]Status, 0, len(services))
	if len(services) == 0 {
		return results
	}

	states, err := statesFromDBus(ctx, services)
	if err != nil {
		log.Debug().Err(err).Msg("systemd dbus unavailable, using systemctl")
		states = nil
	}

	for _, service := range services {
		state, ok := states[unitName(service)]
		if !ok {
			state = stateFromSystemctl(ctx, service)
		}
		results = append(results, Status{ServiceName: service, Status: state})
	}

	return results
}

func statesFromDBus(ctx context.Context, services []string) (map[string]string, error) {
	conn, err := newSystemdConn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	names := make([]string, len(services))
	for i, service := range services {
		names[i] = unitName(service)
	}

	units, err := conn.ListUnitsByNamesContext(ctx, names)
	if err != nil {
		return nil, err
	}

	states := make(map[string]string, len(units))
	for _, u := range units {
		states[u.Name] = u.ActiveState
	}
	return states, nil
}

func stateFromSystemctl(ctx context.Context, service string) string {
	out, err := runSystemctl(ctx, service)
	// is-active exits nonzero for anything but active and still prints the state.
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		log.Warn().Err(err).Str("service", service).Msg("error running systemctl")
		return "error"
	}

	state := strings.TrimSpace(string(out))
	if state == "" {
		return "unknown"
	}
	return state
}

// unitName appends .service to bare names, as systemctl does.
func unitName(service string) string {
	if strings.Contains(service, ".") {
		return service
	}
	return service + ".service"
}
