package domain

import "fmt"

// RCode represents a DNS response code indicating the result of a query.
type RCode uint8

// DNS response codes emitted by this server. The full RFC range is accepted
// for validation purposes; only NOERROR, SERVFAIL, NXDOMAIN, and FORMERR are
// ever produced.
const (
	RCodeNoError  RCode = 0 // NOERROR - query completed successfully
	RCodeFormErr  RCode = 1 // FORMERR - query could not be parsed
	RCodeServFail RCode = 2 // SERVFAIL - internal failure during resolution
	RCodeNXDomain RCode = 3 // NXDOMAIN - queried name does not exist
)

// IsValid returns true if the RCode is within the supported response code range.
func (r RCode) IsValid() bool {
	return r <= 10
}

// String returns the textual representation of the RCode.
func (r RCode) String() string {
	switch r {
	case 0:
		return "NOERROR"
	case 1:
		return "FORMERR"
	case 2:
		return "SERVFAIL"
	case 3:
		return "NXDOMAIN"
	case 4:
		return "NOTIMP"
	case 5:
		return "REFUSED"
	case 6:
		return "YXDOMAIN"
	case 7:
		return "YXRRSET"
	case 8:
		return "NXRRSET"
	case 9:
		return "NOTAUTH"
	case 10:
		return "NOTZONE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", r)
	}
}
