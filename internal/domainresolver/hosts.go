package domainresolver

import (
	"net"
	"strings"
)

// HostSet holds the hostnames served by the platform itself. It is built once
// from configuration and never mutated.
type HostSet struct {
	exact    map[string]struct{}
	suffixes []string
}

// NewHostSet builds a set from exact hostnames and wildcard suffixes.
// Suffixes may be written as ".example.com", "*.example.com" or "example.com";
// all three match subdomains of example.com only.
func NewHostSet(known, suffixes []string) *HostSet {
	set := &HostSet{exact: make(map[string]struct{}, len(known))}
	for _, host := range known {
		if host = NormalizeHost(host); host != "" {
			set.exact[host] = struct{}{}
		}
	}
	for _, suffix := range suffixes {
		suffix = strings.ToLower(strings.TrimSpace(suffix))
		suffix = strings.TrimPrefix(suffix, "*")
		suffix = strings.TrimSuffix(suffix, ".")
		if suffix == "" || suffix == "." {
			continue
		}
		if !strings.HasPrefix(suffix, ".") {
			suffix = "." + suffix
		}
		set.suffixes = append(set.suffixes, suffix)
	}
	return set
}

// IsPlatform reports whether host belongs to the platform. host is expected
// to be normalized.
func (s *HostSet) IsPlatform(host string) bool {
	if s == nil {
		return false
	}
	if _, ok := s.exact[host]; ok {
		return true
	}
	for _, suffix := range s.suffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// NormalizeHost lowercases a Host header value and strips port and trailing dot.
func NormalizeHost(raw string) string {
	host := strings.ToLower(strings.TrimSpace(raw))
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	return strings.TrimSuffix(host, ".")
}
