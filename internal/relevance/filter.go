// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

// Filter is the pre-scoring stage of a history scan. It drops URLs that
// can never be research candidates. It is not a scored decision.
type Filter struct {
	schemes  []string
	domains  []string
	patterns []*regexp.Regexp
}

// NewFilter compiles the skip rules of tables.
func NewFilter(tables Tables) (*Filter, error) {
	t := tables.clone()
	t.normalize()
	f := &Filter{schemes: t.SkipSchemes, domains: t.BlockedDomains}
	for _, p := range t.BlockedPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling blocked pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// DefaultFilter returns a Filter over the built-in tables.
func DefaultFilter() *Filter {
	f, err := NewFilter(DefaultTables())
	if err != nil {
		panic(err)
	}
	return f
}

// ShouldSkip reports whether raw must be dropped before scoring: empty
// URLs, browser-internal schemes, loopback hosts, blocked domains and
// blocked URL patterns. URLs that fail to parse are not skipped here; the
// scorer gives them a zero score.
func (f *Filter) ShouldSkip(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	lower := strings.ToLower(raw)
	for _, s := range f.schemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}

	host, err := Hostname(raw)
	if err != nil {
		return false
	}
	if isLoopback(host) {
		return true
	}
	for _, d := range f.domains {
		if hostMatches(host, d) {
			return true
		}
	}
	for _, re := range f.patterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func isLoopback(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}
