package utils

import "testing"

func TestCanonicalDNSName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already canonical", input: "romulan.zone", want: "romulan.zone"},
		{name: "trailing dot", input: "romulan.zone.", want: "romulan.zone"},
		{name: "multiple trailing dots", input: "romulan.zone..", want: "romulan.zone"},
		{name: "mixed case", input: "Foo.Romulan.ZONE", want: "foo.romulan.zone"},
		{name: "surrounding whitespace", input: "  evil.com.  ", want: "evil.com"},
		{name: "root", input: ".", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalDNSName(tt.input); got != tt.want {
				t.Errorf("CanonicalDNSName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
