// Package parser turns provider payloads into normalized ranking, traffic and
// metric records. Nothing here performs I/O.
package parser

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// MatchesDomain reports whether raw (URL or host) is domain or one of its
// subdomains, compared on whole labels after dropping "www.". Lookalikes such
// as "notexample.com" or "example.com.evil.net" do not match, and neither do
// siblings on a shared host ("jones.lawyers.com" is not "smith.lawyers.com").
// A domain that is itself a public suffix ("co.uk", "github.io") matches nothing.
func MatchesDomain(raw, domain string) bool {
	want := hostOf(domain)
	if want == "" || isPublicSuffix(want) {
		return false
	}
	got := hostOf(raw)
	return got == want || strings.HasSuffix(got, "."+want)
}

func isPublicSuffix(host string) bool {
	if net.ParseIP(host) != nil {
		return false
	}
	suffix, icann := publicsuffix.PublicSuffix(host)
	// unlisted single labels such as "localhost" fall under the implicit "*" rule
	return suffix == host && (icann || strings.Contains(host, "."))
}

func hostOf(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return ""
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		s = u.Hostname()
	} else {
		if i := strings.IndexAny(s, "/?#"); i >= 0 {
			s = s[:i]
		}
		if i := strings.LastIndex(s, ":"); i >= 0 && !strings.Contains(s[i:], "]") {
			s = s[:i]
		}
	}

	s = strings.TrimSuffix(s, ".")
	return strings.TrimPrefix(s, "www.")
}
