package geocode

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGeocoder struct {
	calls   int
	results map[string]Result
	err     error
}

func (c *countingGeocoder) Reverse(ctx context.Context, lat, lon float64) (Result, error) {
	c.calls++
	if c.err != nil {
		return Result{}, c.err
	}
	return c.results[fmt.Sprintf("%.4f,%.4f", lat, lon)], nil
}

func TestCachedReverseReusesResults(t *testing.T) {
	inner := &countingGeocoder{results: map[string]Result{
		"29.6500,-97.4300": {Place: "Texas, United States"},
	}}
	cached := NewCached(inner, 10)

	for i := 0; i < 3; i++ {
		result, err := cached.Reverse(context.Background(), 29.65, -97.43)
		require.NoError(t, err)
		assert.Equal(t, "Texas, United States", result.Place)
	}
	assert.Equal(t, 1, inner.calls, "repeated lookups should hit the cache")
}

func TestCachedReverseRoundsCoordinates(t *testing.T) {
	inner := &countingGeocoder{results: map[string]Result{
		"29.6500,-97.4300": {Place: "Texas, United States"},
	}}
	cached := NewCached(inner, 10)

	// Differ below the fourth decimal place: same cache entry.
	_, err := cached.Reverse(context.Background(), 29.65001, -97.43002)
	require.NoError(t, err)
	_, err = cached.Reverse(context.Background(), 29.64999, -97.42998)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
}

func TestCachedReverseSkipsEmptyResults(t *testing.T) {
	inner := &countingGeocoder{results: map[string]Result{}}
	cached := NewCached(inner, 10)

	// Open-ocean positions resolve to nothing and must stay uncached so a
	// later, better answer is not shadowed.
	for i := 0; i < 2; i++ {
		result, err := cached.Reverse(context.Background(), 0, -150)
		require.NoError(t, err)
		assert.Empty(t, result.Place)
	}
	assert.Equal(t, 2, inner.calls)
}

func TestCachedReversePropagatesErrors(t *testing.T) {
	inner := &countingGeocoder{err: fmt.Errorf("rate limited")}
	cached := NewCached(inner, 10)

	_, err := cached.Reverse(context.Background(), 29.65, -97.43)
	assert.Error(t, err)

	// Errors are not cached either.
	_, _ = cached.Reverse(context.Background(), 29.65, -97.43)
	assert.Equal(t, 2, inner.calls)
}

func TestLRUCacheEviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", Result{Place: "A"})
	c.put("b", Result{Place: "B"})

	// Touch "a" so "b" becomes least recently used.
	_, ok := c.get("a")
	require.True(t, ok)

	c.put("c", Result{Place: "C"})

	_, ok = c.get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	if r, ok := c.get("a"); assert.True(t, ok) {
		assert.Equal(t, "A", r.Place)
	}
	if r, ok := c.get("c"); assert.True(t, ok) {
		assert.Equal(t, "C", r.Place)
	}
}

func TestLRUCacheUpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", Result{Place: "old"})
	c.put("a", Result{Place: "new"})

	r, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, "new", r.Place)
	assert.Len(t, c.entries, 1)
}
