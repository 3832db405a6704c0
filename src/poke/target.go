// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package poke

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/H0llyW00dzZ/tls-poke/src/logger"
)

// DefaultPort is used when no port is given or the given one is unusable.
const DefaultPort = 443

// Target identifies the endpoint under test.
type Target struct {
	Host string
	Port int
}

// NewTarget builds a Target from command-line style arguments.
//
// An empty portArg selects [DefaultPort]. A portArg that is not a number in
// 1..65535 is logged as a warning and also falls back to [DefaultPort].
func NewTarget(host, portArg string, log logger.Logger) Target {
	t := Target{Host: strings.TrimSpace(host), Port: DefaultPort}

	portArg = strings.TrimSpace(portArg)
	if portArg == "" {
		return t
	}

	port, err := strconv.Atoi(portArg)
	switch {
	case err != nil:
		log.Warn("unable to parse port, using default", "port", portArg, "default", DefaultPort, "error", err)
	case port < 1 || port > 65535:
		log.Warn("port out of range, using default", "port", portArg, "default", DefaultPort)
	default:
		t.Port = port
	}

	return t
}

// Address returns host:port suitable for dialing.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// String implements [fmt.Stringer].
func (t Target) String() string { return t.Address() }

// validate reports configuration problems that make probing pointless.
func (t Target) validate() error {
	if t.Host == "" {
		return ErrEmptyHost
	}
	if t.Port < 1 || t.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, t.Port)
	}
	return nil
}
