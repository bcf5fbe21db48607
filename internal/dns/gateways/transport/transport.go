// Package transport provides the network listeners for the blackhole
// server. Transports own all socket and framing concerns and hand fully
// decoded domain objects to the resolver service.
package transport

import (
	"context"

	"github.com/nxzone/blackholed/internal/dns/services/resolver"
)

// ServerTransport defines the interface for DNS server transport
// implementations. UDP and TCP implement it today; the same contract would
// fit DoT/DoH listeners later.
type ServerTransport interface {
	// Start binds the listener and begins handling requests via the provided
	// handler. Starting an already running transport is a no-op.
	Start(ctx context.Context, handler resolver.DNSResponder) error

	// Stop gracefully shuts down the transport and releases the bound port.
	// Safe to call on a transport that was never started.
	Stop() error

	// Address returns the network address the transport is bound to.
	Address() string
}

// TransportType identifies a transport protocol.
type TransportType string

const (
	// TransportUDP is standard DNS over UDP (RFC 1035).
	TransportUDP TransportType = "udp"

	// TransportTCP is DNS over TCP with 2-byte length framing (RFC 7766).
	TransportTCP TransportType = "tcp"
)
