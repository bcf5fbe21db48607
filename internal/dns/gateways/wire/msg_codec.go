package wire

import (
	"errors"
	"fmt"

	"github.com/miekg/dns"

	"github.com/nxzone/blackholed/internal/dns/common/log"
	"github.com/nxzone/blackholed/internal/dns/domain"
)

// msgCodec implements DNSCodec on top of miekg/dns.
type msgCodec struct {
	logger log.Logger
}

// NewMsgCodec creates a DNSCodec backed by miekg/dns message packing.
func NewMsgCodec(logger log.Logger) *msgCodec {
	return &msgCodec{logger: logger}
}

// DecodeQuery parses a DNS query message from data.
func (c *msgCodec) DecodeQuery(data []byte) (domain.Question, error) {
	var m dns.Msg
	if err := m.Unpack(data); err != nil {
		return domain.Question{}, fmt.Errorf("unpack query: %w", err)
	}
	if m.Response {
		return domain.Question{}, errors.New("message is a response, not a query")
	}
	if len(m.Question) != 1 {
		return domain.Question{}, fmt.Errorf("expected exactly one question, got %d", len(m.Question))
	}

	q := m.Question[0]

	c.logger.Debug(map[string]any{
		"id":    m.Id,
		"name":  q.Name,
		"type":  domain.RRType(q.Qtype).String(),
		"class": domain.RRClass(q.Qclass).String(),
	}, "Decoded DNS query")

	return domain.NewQuestion(m.Id, q.Name, domain.RRType(q.Qtype), domain.RRClass(q.Qclass))
}

// EncodeResponse serializes a DNSResponse. The question section echoes the
// original query; header flags assert authority and deny recursion.
func (c *msgCodec) EncodeResponse(query domain.Question, resp domain.DNSResponse) ([]byte, error) {
	m := new(dns.Msg)
	m.Id = resp.ID
	m.Response = true
	m.Authoritative = true
	m.RecursionAvailable = false
	m.Opcode = dns.OpcodeQuery
	m.Rcode = int(resp.RCode)
	m.Question = []dns.Question{{
		Name:   dns.Fqdn(query.Name),
		Qtype:  uint16(query.Type),
		Qclass: uint16(query.Class),
	}}

	var err error
	if m.Answer, err = c.toWireRecords(resp.Answers); err != nil {
		return nil, fmt.Errorf("encode answer section: %w", err)
	}
	if m.Ns, err = c.toWireRecords(resp.Authority); err != nil {
		return nil, fmt.Errorf("encode authority section: %w", err)
	}
	if m.Extra, err = c.toWireRecords(resp.Additional); err != nil {
		return nil, fmt.Errorf("encode additional section: %w", err)
	}

	packed, err := m.Pack()
	if err != nil {
		return nil, fmt.Errorf("pack response: %w", err)
	}

	c.logger.Debug(map[string]any{
		"id":    resp.ID,
		"rcode": resp.RCode.String(),
		"an":    len(m.Answer),
		"ns":    len(m.Ns),
		"size":  len(packed),
	}, "Encoded DNS response")

	return packed, nil
}

// EncodeFormatError builds a header-only FORMERR reply.
func (c *msgCodec) EncodeFormatError(id uint16) ([]byte, error) {
	m := new(dns.Msg)
	m.Id = id
	m.Response = true
	m.Authoritative = true
	m.Rcode = dns.RcodeFormatError
	return m.Pack()
}

// toWireRecords converts domain records to miekg/dns records via their
// zone-file presentation.
func (c *msgCodec) toWireRecords(records []domain.ResourceRecord) ([]dns.RR, error) {
	if len(records) == 0 {
		return nil, nil
	}
	out := make([]dns.RR, 0, len(records))
	for _, rr := range records {
		line := fmt.Sprintf("%s %d %s %s %s",
			dns.Fqdn(rr.Name), rr.TTL, rr.Class.String(), rr.Type.String(), rr.Text)
		wireRR, err := dns.NewRR(line)
		if err != nil {
			return nil, fmt.Errorf("build %s record for %s: %w", rr.Type, rr.Name, err)
		}
		out = append(out, wireRR)
	}
	return out, nil
}
