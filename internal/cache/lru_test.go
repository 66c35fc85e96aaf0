package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	c.Set("a", 2)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Size())
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, c.Stats())
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string](2, 0)
	c.Set("a", "A")
	c.Set("b", "B")
	_, _ = c.Get("a")
	c.Set("c", "C")

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestLRUCacheTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](10, time.Minute).WithClock(clock.now)

	c.Set("a", 1)
	clock.advance(30 * time.Second)
	c.Set("b", 2)

	clock.advance(45 * time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	clock.advance(time.Minute)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Size())
}

func TestLRUCacheDeleteAndPurge(t *testing.T) {
	c := NewLRUCache[int](10, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	c.Delete("missing")
	assert.Equal(t, 1, c.Size())
	c.Purge()
	assert.Equal(t, 0, c.Size())
	c.Set("c", 3)
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestManagerCleansRegisteredCaches(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewLRUCache[int](10, time.Second).WithClock(clock.now)
	c.Set("a", 1)

	m := NewManager(nil)
	m.Register(c)
	assert.Equal(t, 0, m.CleanNow())

	clock.advance(2 * time.Second)
	assert.Equal(t, 1, m.CleanNow())

	m.StartCleanup(time.Hour)
	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
