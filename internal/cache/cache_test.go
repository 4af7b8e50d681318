package cache

import (
	"errors"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](0)
	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v, want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) ok = true, want false")
	}
	c.Set("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) after replace = %v, want 10", v)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)
	var evicted []string
	c.OnEvict(func(k string, _ int) { evicted = append(evicted, k) })

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // b is now the oldest
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive eviction")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("evicted = %v, want [b]", evicted)
	}
	if s := c.Stats(); s.Evictions != 1 {
		t.Errorf("Stats().Evictions = %d, want 1", s.Evictions)
	}
}

func TestCacheGetOrLoad(t *testing.T) {
	c := New[int, string](0)
	calls := 0
	load := func() (string, error) {
		calls++
		return "v", nil
	}

	for range 3 {
		v, err := c.GetOrLoad(7, load)
		if err != nil || v != "v" {
			t.Fatalf("GetOrLoad() = %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("load called %d times, want 1", calls)
	}

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Stats() hits=%d misses=%d, want 2 and 1", s.Hits, s.Misses)
	}
}

func TestCacheGetOrLoadErrorNotCached(t *testing.T) {
	c := New[int, int](0)
	boom := errors.New("boom")

	if _, err := c.GetOrLoad(1, func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("GetOrLoad() error = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() after failed load = %d, want 0", c.Len())
	}
	v, err := c.GetOrLoad(1, func() (int, error) { return 5, nil })
	if err != nil || v != 5 {
		t.Errorf("retry GetOrLoad() = %v, %v, want 5, nil", v, err)
	}
}

func TestCacheDeleteFuncAndClear(t *testing.T) {
	c := New[int, int](0)
	for i := range 6 {
		c.Set(i, i*i)
	}
	if n := c.DeleteFunc(func(k, _ int) bool { return k%2 == 0 }); n != 3 {
		t.Errorf("DeleteFunc() = %d, want 3", n)
	}
	if !c.Delete(1) {
		t.Error("Delete(1) = false, want true")
	}
	if c.Delete(1) {
		t.Error("second Delete(1) = true, want false")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}
