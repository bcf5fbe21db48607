package resolver

import (
	"context"
	"net"

	"github.com/nxzone/blackholed/internal/dns/domain"
)

// DNSResponder is the contract the transport layer calls once per inbound
// query. Implementations always return a well-formed response and never
// panic past this boundary; internal faults degrade to SERVFAIL.
type DNSResponder interface {
	HandleQuery(ctx context.Context, query domain.Question, clientAddr net.Addr) domain.DNSResponse
}

// Journal records observed queries for sinkhole telemetry. Observe reports
// whether the canonical name was seen for the first time. Implementations
// swallow their own I/O errors; a response never depends on journal health.
type Journal interface {
	Observe(query domain.Question, rcode domain.RCode) (novel bool)
	Close() error
}
