package shapekit_test

import (
	"sync"
	"testing"

	sk "github.com/reoring/shapekit"
)

func TestCache_ConcurrentApplyConverges(t *testing.T) {
	cache := sk.NewCache()
	person, cfg := personDesc()

	const n = 32
	got := make([]*sk.Codec, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := cache.Apply(cfg, person)
			if err != nil {
				t.Errorf("apply: %v", err)
				return
			}
			got[i] = c
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if got[i] != got[0] {
			t.Fatalf("expected one shared codec, got distinct values at %d", i)
		}
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", cache.Len())
	}
}

func TestCache_KeysByIdentity(t *testing.T) {
	cache := sk.NewCache()
	person, cfg := personDesc()
	a, _ := cache.Apply(cfg, person)
	b, _ := cache.Apply(cfg.With(), person)
	if a == b {
		t.Fatalf("distinct configurations must not share an entry")
	}
	c1, _ := cache.Apply(nil, sk.Int())
	c2, _ := cache.Apply(sk.Default(), sk.Int())
	if c1 != c2 {
		t.Fatalf("nil config should map to the default config")
	}
	if cache.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", cache.Len())
	}
	cache.Reset()
	if cache.Len() != 0 {
		t.Fatalf("reset should drop entries")
	}
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	cache := sk.NewCache()
	ref := sk.NewRef("Late")
	if _, err := cache.Apply(nil, ref); err == nil {
		t.Fatalf("expected unresolved ref error")
	}
	ref.Resolve(sk.Int())
	if _, err := cache.Apply(nil, ref); err != nil {
		t.Fatalf("second apply should compile after resolution: %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", cache.Len())
	}
}
