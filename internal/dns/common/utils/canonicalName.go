package utils

import "strings"

// CanonicalDNSName returns a DNS name in canonical comparison form:
// - Lowercased (DNS names compare case-insensitively, RFC 4343)
// - Trimmed of surrounding whitespace
// - No trailing root dot
func CanonicalDNSName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	return name
}
