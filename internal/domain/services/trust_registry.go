package services

import "strings"

// TrustRegistry is the static allow-list of official domains. It is
// read-only after construction.
type TrustRegistry struct {
	domains []string
}

// DefaultTrustedDomains lists the Saudi government domains the service
// treats as official senders.
var DefaultTrustedDomains = []string{
	"absher.sa",
	"najiz.sa",
	"moi.gov.sa",
	"moj.gov.sa",
	"spa.gov.sa",
	"my.gov.sa",
	".gov.sa",
}

// NewTrustRegistry creates a registry for the given domain list. An
// empty list falls back to the defaults.
func NewTrustRegistry(domains []string) *TrustRegistry {
	if len(domains) == 0 {
		domains = DefaultTrustedDomains
	}
	lowered := make([]string, len(domains))
	for i, d := range domains {
		lowered[i] = strings.ToLower(d)
	}
	return &TrustRegistry{domains: lowered}
}

// IsTrusted reports whether the URL text contains a registered domain.
// Matching is substring-based, so "absher.sa.evil.com" also matches;
// see MatchesSuffix for the anchored variant.
func (t *TrustRegistry) IsTrusted(url string) bool {
	lower := strings.ToLower(url)
	for _, d := range t.domains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

// AllTrusted reports whether every URL in the list is trusted. An empty
// list is never trusted.
func (t *TrustRegistry) AllTrusted(urls []string) bool {
	if len(urls) == 0 {
		return false
	}
	for _, u := range urls {
		if !t.IsTrusted(u) {
			return false
		}
	}
	return true
}

// MatchesSuffix is the hardened membership test: the host must equal a
// registered domain or end with "." plus it. Not used by the fusion
// path yet; callers that need spoof resistance can opt in.
func (t *TrustRegistry) MatchesSuffix(host string) bool {
	host = strings.ToLower(host)
	for _, d := range t.domains {
		if strings.HasPrefix(d, ".") {
			if strings.HasSuffix(host, d) {
				return true
			}
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Domains returns a copy of the registered domain list
func (t *TrustRegistry) Domains() []string {
	out := make([]string, len(t.domains))
	copy(out, t.domains)
	return out
}
