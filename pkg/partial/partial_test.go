package partial_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-component-kit/pkg/partial"
)

func TestCache_RendersOnce(t *testing.T) {
	cache := partial.NewCache()
	calls := 0
	cache.Register("row", func() (string, error) {
		calls++
		return "<tr></tr>", nil
	}, false)

	first, err := cache.Resolve("row")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := cache.Resolve("row")
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if first != second {
		t.Fatalf("fragments differ: %q vs %q", first, second)
	}
	if calls != 1 {
		t.Fatalf("expected render body to run once, ran %d times", calls)
	}
}

func TestCache_FirstRegistrationWins(t *testing.T) {
	cache := partial.NewCache()
	if !cache.Register("a", func() (string, error) { return "first", nil }, true) {
		t.Fatalf("expected first registration to be stored")
	}
	if cache.Register("a", func() (string, error) { return "second", nil }, false) {
		t.Fatalf("expected second registration to be ignored")
	}
	got, err := cache.Resolve("a")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "first" || !cache.Inline("a") {
		t.Fatalf("unexpected entry: %q inline=%v", got, cache.Inline("a"))
	}
}

func TestCache_UnknownName(t *testing.T) {
	_, err := partial.NewCache().Resolve("missing")
	if !errors.Is(err, partial.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCache_FailedRenderIsRetried(t *testing.T) {
	cache := partial.NewCache()
	fail := true
	cache.Register("flaky", func() (string, error) {
		if fail {
			fail = false
			return "", errors.New("boom")
		}
		return "ok", nil
	}, false)

	if _, err := cache.Resolve("flaky"); err == nil {
		t.Fatalf("expected first resolve to fail")
	}
	got, err := cache.Resolve("flaky")
	if err != nil || got != "ok" {
		t.Fatalf("expected retry to succeed, got %q, %v", got, err)
	}
}

func TestCache_ObserverAndConcurrency(t *testing.T) {
	var (
		mu   sync.Mutex
		hits int
		miss int
	)
	cache := partial.NewCache(partial.WithObserver(func(_ string, hit bool) {
		mu.Lock()
		defer mu.Unlock()
		if hit {
			hits++
		} else {
			miss++
		}
	}))
	cache.Register("p", func() (string, error) { return "x", nil }, false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Resolve("p"); err != nil {
				t.Errorf("resolve: %v", err)
			}
		}()
	}
	wg.Wait()

	if miss != 1 || hits != 7 {
		t.Fatalf("expected 1 miss and 7 hits, got %d and %d", miss, hits)
	}
}

func TestStore_DropForgetsCache(t *testing.T) {
	store := partial.NewStore()
	store.For("page.html").Register("p", func() (string, error) { return "x", nil }, false)
	store.For("other.html")

	if diff := cmp.Diff([]string{"other.html", "page.html"}, store.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	store.Drop("page.html")
	if _, ok := store.Lookup("page.html"); ok {
		t.Fatalf("expected cache to be dropped")
	}
	if store.For("page.html").Has("p") {
		t.Fatalf("expected a fresh cache after drop")
	}
}
