// Package cachekey derives cache keys from request URLs.
package cachekey

import "net/url"

const (
	keyPrefix         = "wc_"
	versionSeparator  = "_"
	contentTypeSuffix = "_ct"
)

type CacheKeyer struct {
	// Version is a free-form tag included in every key.
	// Bumping it invalidates all previously cached entries wholesale.
	Version string
}

func NewCacheKeyer(version string) CacheKeyer {
	return CacheKeyer{Version: version}
}

// Key returns the cache key for the given request URL.
// The key depends on the full URL (path and query string), or on the
// path only if ignoreQuerystring is set. Two URLs differing only in
// query string therefore share a key under an ignore-querystring rule.
func (c CacheKeyer) Key(u *url.URL, ignoreQuerystring bool) string {
	uri := u.RequestURI()
	if ignoreQuerystring {
		uri = u.EscapedPath()
	}
	return keyPrefix + uri + versionSeparator + c.Version
}

// ContentTypeKey returns the key of the content-type record paired with
// the given body key.
func ContentTypeKey(key string) string {
	return key + contentTypeSuffix
}
