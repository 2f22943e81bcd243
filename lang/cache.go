package lang

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// Cache memoizes compile results of one registry keyed by source text and
// reference. It is safe for concurrent use; concurrent requests for the same
// key compile once.
//
// Cached results are shared between callers and must not be modified.
type Cache struct {
	reg     *Registry
	entries sync.Map // uint64 -> *entry
}

// entry tracks the compile state of one (source, reference) pair.
type entry struct {
	once sync.Once
	src  string
	ref  string
	res  *Result
	err  error
}

// NewCache returns an empty cache compiling with reg.
func NewCache(reg *Registry) *Cache {
	return &Cache{reg: reg}
}

// Registry returns the registry the cache compiles with.
func (c *Cache) Registry() *Registry { return c.reg }

// Compile returns the cached result of compiling src with ref, compiling it
// on first use. Errors are cached too, since compilation is deterministic.
func (c *Cache) Compile(
	ctx context.Context,
	src string,
	ref any,
) (*Result, error) {
	var refText string
	if ref != nil {
		refText = fmt.Sprint(ref)
	}

	key := xxh3.HashStringSeed(src, xxh3.HashString(refText))

	value, hit := c.entries.LoadOrStore(key, &entry{src: src, ref: refText})

	e, ok := value.(*entry)
	if !ok || e.src != src || e.ref != refText {
		// Hash collision with a different input; bypass the cache.
		c.reg.logger.TraceContext(
			ctx,
			"cache bypass",
			slog.String("key", strconv.FormatUint(key, 36)),
		)

		return c.reg.Compile(ctx, src, ref)
	}

	c.reg.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("key", strconv.FormatUint(key, 36)),
		slog.Bool("cache_hit", hit),
	)

	e.once.Do(func() {
		e.res, e.err = c.reg.Compile(ctx, src, ref)
	})

	return e.res, e.err
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	n := 0

	c.entries.Range(func(any, any) bool {
		n++

		return true
	})

	return n
}

// Reset removes all cached entries.
func (c *Cache) Reset() {
	c.entries.Clear()
}
