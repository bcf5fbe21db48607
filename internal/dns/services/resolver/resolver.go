// Package resolver implements the core blackhole resolution logic: every
// query is classified against the single authoritative zone and answered
// with the zone SOA, the zone NS set, or NXDOMAIN. The zone publishes no
// other records on purpose.
package resolver

import (
	"context"
	"net"

	"github.com/nxzone/blackholed/internal/dns/common/log"
	"github.com/nxzone/blackholed/internal/dns/common/utils"
	"github.com/nxzone/blackholed/internal/dns/domain"
)

type Resolver struct {
	zone    domain.Zone
	journal Journal
	logger  log.Logger
}

type ResolverOptions struct {
	Zone    domain.Zone
	Journal Journal
	Logger  log.Logger
}

func NewResolver(opts ResolverOptions) *Resolver {
	return &Resolver{
		zone:    opts.Zone,
		journal: opts.Journal,
		logger:  opts.Logger,
	}
}

// HandleQuery resolves a single query. It is safe for concurrent use: the
// only shared state is the read-only zone configuration.
//
// Any panic raised during classification, record construction, or journal
// observation is recovered here and converted into a SERVFAIL response
// carrying the echoed transaction id and empty sections. The transport layer
// never needs error recovery for resolution failures.
func (r *Resolver) HandleQuery(ctx context.Context, query domain.Question, clientAddr net.Addr) (resp domain.DNSResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error(map[string]any{
				"query_id": query.ID,
				"name":     query.Name,
				"type":     query.Type.String(),
				"panic":    rec,
			}, "Internal fault during resolution")
			resp = domain.NewDNSErrorResponse(query.ID, domain.RCodeServFail)
		}
	}()

	resp = r.buildResponse(query)
	novel := r.journal.Observe(query, resp.RCode)

	r.logger.Info(map[string]any{
		"query_id": query.ID,
		"name":     query.Name,
		"type":     query.Type.String(),
		"rcode":    resp.RCode.String(),
		"answers":  len(resp.Answers),
		"novel":    novel,
		"client":   clientAddrString(clientAddr),
	}, "Resolved query")

	return resp
}

// buildResponse is the resolution state machine. It is total over all
// (type, in-zone) pairs and decided in priority order:
//
//  1. SOA query for an in-zone name: the SOA is the answer, authority empty.
//  2. NS query for an in-zone name: one answer per configured name server.
//  3. Everything else: NXDOMAIN with the zone SOA in the authority section
//     so resolvers can negative-cache per RFC 2308.
func (r *Resolver) buildResponse(query domain.Question) domain.DNSResponse {
	name := utils.CanonicalDNSName(query.Name)
	inZone := r.zone.Contains(name)

	switch {
	case query.Type == domain.RRTypeSOA && inZone:
		return domain.DNSResponse{
			ID:      query.ID,
			RCode:   domain.RCodeNoError,
			Answers: []domain.ResourceRecord{r.zone.SOARecord(name)},
		}
	case query.Type == domain.RRTypeNS && inZone:
		return domain.DNSResponse{
			ID:      query.ID,
			RCode:   domain.RCodeNoError,
			Answers: r.zone.NSRecords(name),
		}
	default:
		return domain.DNSResponse{
			ID:        query.ID,
			RCode:     domain.RCodeNXDomain,
			Authority: []domain.ResourceRecord{r.zone.SOARecord(r.zone.Name)},
		}
	}
}

func clientAddrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}
