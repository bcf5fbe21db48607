package domain

import (
	"fmt"
	"strings"

	"github.com/nxzone/blackholed/internal/dns/common/utils"
)

// SOA holds the start-of-authority parameters for the zone.
// Serial follows the YYYYMMDDnn convention; intervals are seconds.
type SOA struct {
	Primary string // primary name server (mname)
	Mailbox string // responsible party mailbox name (rname)
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

// Validate checks the SOA fields for structural validity.
func (s SOA) Validate() error {
	if s.Primary == "" {
		return fmt.Errorf("soa primary name server must not be empty")
	}
	if s.Mailbox == "" {
		return fmt.Errorf("soa mailbox must not be empty")
	}
	return nil
}

// Zone is the immutable authoritative zone configuration. It is constructed
// once at startup and shared read-only between concurrent resolutions.
type Zone struct {
	Name        string // canonical apex name, no trailing dot
	SOA         SOA
	NameServers []string // ordered, at least one
	TTL         uint32   // applied to every record this server emits
}

// NewZone constructs a Zone with canonicalized names and validates it.
func NewZone(name string, soa SOA, nameServers []string, ttl uint32) (Zone, error) {
	ns := make([]string, len(nameServers))
	for i, n := range nameServers {
		ns[i] = utils.CanonicalDNSName(n)
	}
	z := Zone{
		Name: utils.CanonicalDNSName(name),
		SOA: SOA{
			Primary: utils.CanonicalDNSName(soa.Primary),
			Mailbox: utils.CanonicalDNSName(soa.Mailbox),
			Serial:  soa.Serial,
			Refresh: soa.Refresh,
			Retry:   soa.Retry,
			Expire:  soa.Expire,
			Minimum: soa.Minimum,
		},
		NameServers: ns,
		TTL:         ttl,
	}
	if err := z.Validate(); err != nil {
		return Zone{}, err
	}
	return z, nil
}

// Validate checks whether the Zone fields are structurally valid.
func (z Zone) Validate() error {
	if z.Name == "" {
		return fmt.Errorf("zone name must not be empty")
	}
	if err := z.SOA.Validate(); err != nil {
		return err
	}
	if len(z.NameServers) == 0 {
		return fmt.Errorf("zone must advertise at least one name server")
	}
	for i, ns := range z.NameServers {
		if ns == "" {
			return fmt.Errorf("name server at index %d must not be empty", i)
		}
	}
	if z.TTL == 0 {
		return fmt.Errorf("zone ttl must be greater than zero")
	}
	return nil
}

// Contains reports whether name falls inside the authoritative zone: the
// canonical form either equals the apex or is a strict subdomain of it.
// Pure suffix match; no wildcard or delegation logic.
func (z Zone) Contains(name string) bool {
	cn := utils.CanonicalDNSName(name)
	if cn == "" {
		return false
	}
	return cn == z.Name || strings.HasSuffix(cn, "."+z.Name)
}

// SOARecord materializes the zone's SOA record owned by the given name.
func (z Zone) SOARecord(owner string) ResourceRecord {
	return ResourceRecord{
		Name:  utils.CanonicalDNSName(owner),
		Type:  RRTypeSOA,
		Class: RRClassIN,
		TTL:   z.TTL,
		Text: fmt.Sprintf("%s. %s. %d %d %d %d %d",
			z.SOA.Primary, z.SOA.Mailbox,
			z.SOA.Serial, z.SOA.Refresh, z.SOA.Retry, z.SOA.Expire, z.SOA.Minimum),
	}
}

// NSRecords materializes one NS record per configured name server, owned by
// the given name, preserving the configured order.
func (z Zone) NSRecords(owner string) []ResourceRecord {
	cn := utils.CanonicalDNSName(owner)
	records := make([]ResourceRecord, 0, len(z.NameServers))
	for _, ns := range z.NameServers {
		records = append(records, ResourceRecord{
			Name:  cn,
			Type:  RRTypeNS,
			Class: RRClassIN,
			TTL:   z.TTL,
			Text:  ns + ".",
		})
	}
	return records
}
