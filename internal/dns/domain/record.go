package domain

import (
	"fmt"

	"github.com/nxzone/blackholed/internal/dns/common/utils"
)

// ResourceRecord represents an authoritative DNS record published by this
// server. Text holds the RDATA in zone-file presentation format; converting
// it to wire format is the codec's business.
type ResourceRecord struct {
	Name  string
	Type  RRType
	Class RRClass
	TTL   uint32
	Text  string
}

// NewResourceRecord constructs a ResourceRecord with a canonicalized owner name.
func NewResourceRecord(name string, rrtype RRType, class RRClass, ttl uint32, text string) (ResourceRecord, error) {
	rr := ResourceRecord{
		Name:  utils.CanonicalDNSName(name),
		Type:  rrtype,
		Class: class,
		TTL:   ttl,
		Text:  text,
	}
	if err := rr.Validate(); err != nil {
		return ResourceRecord{}, err
	}
	return rr, nil
}

// Validate checks whether the ResourceRecord fields are valid.
func (rr ResourceRecord) Validate() error {
	if rr.Name == "" {
		return fmt.Errorf("record name must not be empty")
	}
	if !rr.Type.IsValid() {
		return fmt.Errorf("invalid RRType: %d", rr.Type)
	}
	if !rr.Class.IsValid() {
		return fmt.Errorf("invalid RRClass: %d", rr.Class)
	}
	if rr.Text == "" {
		return fmt.Errorf("record data must not be empty")
	}
	return nil
}
