package analysis

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spacesedan/sentisocial/internal/monitoring"
	"golang.org/x/sync/singleflight"
)

const DefaultCacheSize = 500

// InferenceCache memoizes classifier results by the exact raw input text.
// Keys are case and whitespace sensitive and taken before normalization.
type InferenceCache[T any] struct {
	name  string
	size  int
	cache *lru.Cache[string, T]
	group singleflight.Group
}

func NewInferenceCache[T any](name string, size int) (*InferenceCache[T], error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, T](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cache: %w", name, err)
	}
	return &InferenceCache[T]{name: name, size: size, cache: c}, nil
}

func (c *InferenceCache[T]) Get(text string) (T, bool) {
	value, ok := c.cache.Get(text)
	monitoring.RecordCacheLookup(c.name, ok)
	return value, ok
}

// Add inserts a result, evicting the least recently used entry when full.
func (c *InferenceCache[T]) Add(text string, value T) {
	c.cache.Add(text, value)
}

func (c *InferenceCache[T]) Contains(text string) bool {
	return c.cache.Contains(text)
}

func (c *InferenceCache[T]) Len() int {
	return c.cache.Len()
}

func (c *InferenceCache[T]) Size() int {
	return c.size
}

func (c *InferenceCache[T]) Purge() {
	c.cache.Purge()
}

// GetOrCompute returns the cached value for text or runs compute once for all
// concurrent callers asking for the same text. Only successful computations are stored.
//
// The shared computation runs on a context detached from any caller's
// cancellation, so one caller giving up never fails the others. A caller whose
// own ctx ends stops waiting and gets ctx.Err().
func (c *InferenceCache[T]) GetOrCompute(ctx context.Context, text string, compute func(ctx context.Context) (T, error)) (T, bool, error) {
	if value, ok := c.Get(text); ok {
		return value, true, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(text, func() (any, error) {
		if value, ok := c.cache.Get(text); ok {
			return value, nil
		}
		value, err := compute(detached)
		if err != nil {
			return value, err
		}
		c.cache.Add(text, value)
		return value, nil
	})

	select {
	case res := <-ch:
		value, _ := res.Val.(T)
		return value, false, res.Err
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	}
}
