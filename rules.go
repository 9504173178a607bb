package webcache

import (
	"net/http"
	"regexp"
	"time"
)

// Rule binds a URL pattern to a caching policy.
// Fields left unset fall back to the global defaults in Config when the
// middleware is constructed; rules are immutable after that.
type Rule struct {
	// Match is tested against the request path only, never against the
	// query string.
	Match *regexp.Regexp
	// MaxAge is the TTL of entries cached under this rule.
	// Zero means the global default.
	MaxAge time.Duration
	// IgnoreQuerystring drops the query string from the cache key, so
	// that requests differing only in query share one entry.
	// Nil means the global default.
	IgnoreQuerystring *bool
	// ClientCache emits a `Cache-Control: public, max-age=...` header on
	// cache hits. Nil means the global default.
	ClientCache *bool
}

// Rules is an ordered list of rules. Order matters: of all rules whose
// pattern matches a path, the LAST one wins, so later, more specific
// rules override earlier general ones.
type Rules []Rule

// rule is a Rule with all defaults resolved.
type rule struct {
	match             *regexp.Regexp
	maxAge            time.Duration
	ignoreQuerystring bool
	clientCache       bool
}

type rules []rule

func (rs Rules) resolve(maxAge time.Duration, ignoreQuerystring, clientCache bool) rules {
	resolved := make(rules, 0, len(rs))
	for _, r := range rs {
		rr := rule{
			match:             r.Match,
			maxAge:            r.MaxAge,
			ignoreQuerystring: ignoreQuerystring,
			clientCache:       clientCache,
		}
		if rr.maxAge == 0 {
			rr.maxAge = maxAge
		}
		if r.IgnoreQuerystring != nil {
			rr.ignoreQuerystring = *r.IgnoreQuerystring
		}
		if r.ClientCache != nil {
			rr.clientCache = *r.ClientCache
		}
		resolved = append(resolved, rr)
	}
	return resolved
}

// find returns the applicable rule for the request, or nil if none
// match. Only GET requests are considered; any other method returns nil
// before rule evaluation. Matching scans the full list and keeps
// overwriting the result, so the last matching rule wins.
func (rs rules) find(r *http.Request) *rule {
	if r.Method != http.MethodGet {
		return nil
	}
	var found *rule
	for i := range rs {
		if rs[i].match != nil && rs[i].match.MatchString(r.URL.Path) {
			found = &rs[i]
		}
	}
	return found
}
