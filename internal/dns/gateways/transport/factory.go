package transport

import (
	"fmt"

	"github.com/nxzone/blackholed/internal/dns/common/log"
	"github.com/nxzone/blackholed/internal/dns/gateways/wire"
)

// NewTransport creates a transport instance for the given protocol. The
// factory keeps cmd wiring independent of concrete transport types.
func NewTransport(transportType TransportType, addr string, codec wire.DNSCodec, logger log.Logger) (ServerTransport, error) {
	switch transportType {
	case TransportUDP:
		return NewUDPTransport(addr, codec, logger), nil

	case TransportTCP:
		return NewTCPTransport(addr, codec, logger), nil

	default:
		return nil, fmt.Errorf("unsupported transport type: %s", transportType)
	}
}

// SupportedTransports returns the transport types this build can serve.
func SupportedTransports() []TransportType {
	return []TransportType{
		TransportUDP,
		TransportTCP,
	}
}

// IsTransportSupported checks if a given transport type is supported.
func IsTransportSupported(transportType TransportType) bool {
	for _, t := range SupportedTransports() {
		if t == transportType {
			return true
		}
	}
	return false
}
