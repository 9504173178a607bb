// Package cachecontrol parses Cache-Control header values into a
// directive map. Directives are identified by a token, compared
// case-insensitively, with an optional argument in token or
// quoted-string syntax:
//
//	Cache-Control   = #cache-directive
//	cache-directive = token [ "=" ( token / quoted-string ) ]
package cachecontrol

import (
	"strconv"
	"strings"
)

type CacheControl struct {
	directives map[string]string
}

// Parse takes a raw Cache-Control header value and returns an instance
// of `CacheControl`. Note that when a directive is repeated, the last
// occurrence wins.
func Parse(header string) CacheControl {
	m := make(map[string]string)
	for _, directive := range strings.Split(header, ",") {
		directive = strings.TrimSpace(directive)
		if directive == "" {
			continue
		}
		parts := strings.SplitN(directive, "=", 2)
		name := directiveName(parts[0])
		var arg string
		if len(parts) > 1 {
			arg = directiveArgument(parts[1])
		}
		m[name] = arg
	}
	return CacheControl{m}
}

func (c CacheControl) Get(directive string) (string, bool) {
	val, ok := c.directives[directive]
	return val, ok
}

// Has reports whether the directive is present, with or without an argument.
func (c CacheControl) Has(directive string) bool {
	_, ok := c.Get(directive)
	return ok
}

// GetInt returns the integer argument of the directive.
// A directive without an argument, or with an argument that does not
// parse as an integer, reads as present but without a value.
func (c CacheControl) GetInt(directive string) (int, bool) {
	val, ok := c.Get(directive)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return i, true
}

// NoCache reports whether the `no-cache` directive is set.
func (c CacheControl) NoCache() bool {
	return c.Has("no-cache")
}

func directiveName(token string) string {
	// tokens are compared case-insensitively
	return strings.ToLower(strings.TrimSpace(token))
}

func directiveArgument(arg string) string {
	// arguments can use both token and quoted-string syntax
	return strings.Trim(arg, "\"")
}
