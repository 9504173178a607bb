// Package webcache implements HTTP response-caching middleware.
// GET requests matching configured URL rules are served from a
// pluggable key/value store when a fresh entry exists; otherwise the
// request passes through to the wrapped handler and the response is
// captured to populate the cache.
package webcache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ericselin/web-cache/cache"
	cachecontrol "github.com/ericselin/web-cache/pkg/cache-control"
	cachekey "github.com/ericselin/web-cache/pkg/cache-key"
	tee "github.com/ericselin/web-cache/pkg/response-tee"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// name used in the X-Cache-By marker header
const markerName = "web-cache"

const defaultMaxAge = 5 * time.Minute

var (
	ErrNoStore = errors.New("webcache: no store configured")
	ErrNoRules = errors.New("webcache: empty rule list")
)

type Config struct {
	// Storage for cache entries.
	Store cache.Store
	// Rules select which paths are cached, in declaration order.
	// Must not be empty.
	Rules Rules
	// Default TTL for rules that do not set one. Defaults to 5 minutes.
	MaxAge time.Duration
	// Version tags every cache key. Bump it to invalidate the whole
	// cache wholesale.
	Version string
	// Default for rules that do not set IgnoreQuerystring.
	IgnoreQuerystring bool
	// Default for rules that do not set ClientCache.
	ClientCache bool
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
}

type WebCache struct {
	store cache.Store
	rules rules
	keyer cachekey.CacheKeyer
	log   zerolog.Logger
}

// New validates the configuration and creates the middleware instance.
// Configuration errors surface here, never at request time.
func New(config Config) (*WebCache, error) {
	if config.Store == nil {
		return nil, ErrNoStore
	}
	if len(config.Rules) == 0 {
		return nil, ErrNoRules
	}
	maxAge := config.MaxAge
	if maxAge == 0 {
		maxAge = defaultMaxAge
	}
	logger := log.Logger
	if config.Logger != nil {
		logger = *config.Logger
	}
	return &WebCache{
		store: config.Store,
		rules: config.Rules.resolve(maxAge, config.IgnoreQuerystring, config.ClientCache),
		keyer: cachekey.NewCacheKeyer(config.Version),
		log:   logger,
	}, nil
}

// Middleware wraps the next handler with the caching logic.
func (c *WebCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rule := c.rules.find(r)
		if rule == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := c.keyer.Key(r.URL, rule.ignoreQuerystring)
		// a request-level no-cache bypasses the cache read entirely
		if !cachecontrol.Parse(r.Header.Get("Cache-Control")).NoCache() {
			if body, contentType, ok := c.lookup(r.Context(), key); ok {
				c.serveHit(w, r, rule, body, contentType)
				return
			}
		}
		c.capture(w, r, next, rule, key)
	})
}

// lookup issues the body and content-type reads concurrently and joins
// them. ok is false on a miss or on any read error; a read error is
// logged and degrades to a miss, it never reaches the client. A hit
// requires both records: an orphaned half of the pair (e.g. after a
// crash between the two writes) reads as a miss and self-heals on the
// following capture.
func (c *WebCache) lookup(ctx context.Context, key string) (body, contentType []byte, ok bool) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		body, err = c.store.Get(ctx, key)
		return err
	})
	g.Go(func() error {
		var err error
		contentType, err = c.store.Get(ctx, cachekey.ContentTypeKey(key))
		return err
	})
	if err := g.Wait(); err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("Could not read from cache")
		return nil, nil, false
	}
	return body, contentType, len(body) > 0 && len(contentType) > 0
}

func (c *WebCache) serveHit(w http.ResponseWriter, r *http.Request, rule *rule, body, contentType []byte) {
	w.Header().Set("Content-Type", string(contentType))
	w.Header().Set("X-Cache-By", markerName+c.keyer.Version)
	if rule.clientCache && rule.maxAge >= time.Second {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(rule.maxAge.Seconds())))
	}
	if _, err := w.Write(body); err != nil {
		c.log.Error().Err(err).Msg("Could not write response body to client")
	}
	c.logRequest(r, true)
}

// capture lets the next handler produce the response through a tee that
// buffers everything written, then decides whether to persist.
func (c *WebCache) capture(w http.ResponseWriter, r *http.Request, next http.Handler, rule *rule, key string) {
	rw := tee.NewResponseSaver(w)
	next.ServeHTTP(rw, r)
	c.logRequest(r, false)
	c.persist(r.Context(), rw, rule, key)
}

// persist writes the captured response to the store if it is eligible:
// status 200, no response-level no-cache, non-empty body, and a
// Content-Type header present. Anything else is discarded silently.
// The body and content-type records are two independent writes with no
// atomicity between them; write errors are logged and dropped, since
// the response has already been delivered to the client.
func (c *WebCache) persist(ctx context.Context, rw *tee.ResponseSaver, rule *rule, key string) {
	if rw.StatusCode() != http.StatusOK {
		return
	}
	if cachecontrol.Parse(rw.Header().Get("Cache-Control")).NoCache() {
		return
	}
	if rw.Size() == 0 {
		return
	}
	contentType := rw.Header().Get("Content-Type")
	if contentType == "" {
		return
	}
	c.log.Trace().Str("key", key).Dur("ttl", rule.maxAge).Msg("Cache write")
	if err := c.store.Set(ctx, key, rw.Body(), rule.maxAge); err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("Could not write body to cache")
	}
	if err := c.store.Set(ctx, cachekey.ContentTypeKey(key), []byte(contentType), rule.maxAge); err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("Could not write content type to cache")
	}
}

func (c *WebCache) logRequest(r *http.Request, hit bool) {
	isHit := 0
	if hit {
		isHit = 1
	}
	c.log.Debug().
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Int("hit", isHit).
		Msg("Sending response to client")
}
