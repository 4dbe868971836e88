package classify

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultCacheSize bounds the memoization cache.
	DefaultCacheSize = 100
	// DefaultCacheTTL is how long a memoized classification stays valid.
	DefaultCacheTTL = time.Hour
)

// Options configures a Classifier. Zero values fall back to the defaults.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

// Classifier memoizes rule-table lookups by error fingerprint. One
// instance is owned per process (no package-level singleton), which keeps
// the cache injectable and resettable in tests.
type Classifier struct {
	cache  *expirable.LRU[string, Classification]
	misses atomic.Uint64
	hits   atomic.Uint64
}

// New creates a Classifier with a bounded TTL+LRU cache.
func New(opts Options) *Classifier {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	return &Classifier{
		cache: expirable.NewLRU[string, Classification](opts.CacheSize, nil, opts.CacheTTL),
	}
}

// Classify maps an error to its Classification. Results are computed
// lazily on first sight of a fingerprint, cached under the TTL, and
// recomputed after expiry. A full cache evicts its least-recently-used
// entry to admit a new one.
func (c *Classifier) Classify(err error) Classification {
	fp := Fingerprint(err)
	if cached, ok := c.cache.Get(fp); ok {
		c.hits.Add(1)
		return cached
	}

	c.misses.Add(1)
	result := match(err)
	result.Fingerprint = fp
	c.cache.Add(fp, result)
	return result
}

// Stats reports cache hits and misses. The miss count equals the number of
// times the rule table was actually evaluated.
func (c *Classifier) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// match evaluates the ordered rule table against the error text.
func match(err error) Classification {
	text := strings.ToLower(err.Error())
	matched := unknownRule
	for _, r := range rules {
		if containsAny(text, r.patterns) {
			matched = r
			break
		}
	}
	return Classification{
		Category:       matched.category,
		Severity:       matched.severity,
		Fixable:        matched.fixable,
		Description:    matched.description,
		SuggestedFixes: append([]string(nil), matched.fixes...),
	}
}

func containsAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
