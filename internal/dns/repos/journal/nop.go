package journal

import "github.com/nxzone/blackholed/internal/dns/domain"

// NopJournal discards all observations. Used when no journal database is
// configured, which keeps the default deployment's observable surface to
// log lines only.
type NopJournal struct{}

func (n *NopJournal) Observe(domain.Question, domain.RCode) bool { return false }

func (n *NopJournal) Close() error { return nil }
