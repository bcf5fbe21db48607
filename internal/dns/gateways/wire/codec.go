// Package wire converts between DNS wire format and domain objects. The
// actual message parsing and serialization is delegated to miekg/dns; this
// package keeps the rest of the codebase free of wire-level types.
package wire

import (
	"github.com/nxzone/blackholed/internal/dns/domain"
)

type DNSCodec interface {
	// DecodeQuery parses an inbound message containing exactly one question.
	DecodeQuery(data []byte) (domain.Question, error)

	// EncodeResponse serializes a response with authoritative header flags
	// (qr=1, aa=1, ra=0), echoing the question section of the original query.
	EncodeResponse(query domain.Question, resp domain.DNSResponse) ([]byte, error)

	// EncodeFormatError builds a minimal FORMERR reply for a message whose
	// body could not be parsed but whose header id was recoverable.
	EncodeFormatError(id uint16) ([]byte, error)
}
