package cache

import (
	"errors"
	"sync"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](4)

	if _, ok := c.Get("a"); ok {
		t.Error("empty cache returned a value")
	}

	c.Set("a", 1)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}

	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) after overwrite = %d", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d", c.Len())
	}
}

func TestCacheEvictsLRU(t *testing.T) {
	c := New[string, int](2)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh a
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry evicted")
	}
	if stats := c.Stats(); stats.Evicts != 1 {
		t.Errorf("Evicts = %d, want 1", stats.Evicts)
	}
}

func TestCacheGetOrCompute(t *testing.T) {
	c := New[string, int](4)

	calls := 0
	compute := func() (int, error) {
		calls++
		return 7, nil
	}

	v, err := c.GetOrCompute("x", compute)
	if err != nil || v != 7 {
		t.Fatalf("GetOrCompute() = %d, %v", v, err)
	}
	v, err = c.GetOrCompute("x", compute)
	if err != nil || v != 7 {
		t.Fatalf("second GetOrCompute() = %d, %v", v, err)
	}
	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
}

func TestCacheGetOrComputeErrorNotCached(t *testing.T) {
	c := New[string, int](4)

	fail := errors.New("boom")
	if _, err := c.GetOrCompute("x", func() (int, error) { return 0, fail }); !errors.Is(err, fail) {
		t.Fatalf("error = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Error("failed computation was cached")
	}

	v, err := c.GetOrCompute("x", func() (int, error) { return 9, nil })
	if err != nil || v != 9 {
		t.Errorf("retry = %d, %v", v, err)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New[string, int](4)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry still present")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
}

func TestCacheStats(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Stats = %+v", stats)
	}
	if stats.HitRate < 0.66 || stats.HitRate > 0.67 {
		t.Errorf("HitRate = %f", stats.HitRate)
	}
	if stats.Capacity != 2 || stats.Size != 1 {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[int, int](64)

	var wg sync.WaitGroup
	wg.Add(8)
	for i := 0; i < 8; i++ {
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := (base*200 + j) % 100
				c.Set(key, key)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 64 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}
