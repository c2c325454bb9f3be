package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"recipe-planner/internal/auth"
	"recipe-planner/internal/provider"
	"recipe-planner/internal/section"
)

func testFetchers(calls *atomic.Int32, n int) func(name string) []section.Fetcher {
	return func(name string) []section.Fetcher {
		if name != "dessert" {
			return nil
		}
		return []section.Fetcher{{
			Tag: provider.TagMealDB,
			Fetch: func(ctx context.Context) (provider.RawItems, error) {
				calls.Add(1)
				items := make(provider.RawItems, n)
				for i := range items {
					items[i] = json.RawMessage(fmt.Sprintf(`{"idMeal": "%d", "strMeal": "Meal %d"}`, i, i))
				}
				return items, nil
			},
		}}
	}
}

// A request torn down during the first load must not wedge the section:
// the next request retries the fetch.
func TestSectionRetriesAfterCancelledRequest(t *testing.T) {
	var calls atomic.Int32
	set := newSectionSet(zap.NewNop(), testFetchers(&calls, 8))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := set.summary(cancelled, "dessert")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.Total != 0 {
		t.Fatalf("cancelled load must not install items, got %d", summary.Total)
	}

	summary, err = set.summary(context.Background(), "dessert")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.Total != 8 {
		t.Fatalf("expected a retried load with 8 items, got %d", summary.Total)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 fetches (one discarded, one retried), got %d", calls.Load())
	}
}

func TestSectionLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	set := newSectionSet(zap.NewNop(), testFetchers(&calls, 8))

	for i := 0; i < 3; i++ {
		if _, err := set.summary(context.Background(), "dessert"); err != nil {
			t.Fatalf("summary failed: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single fetch across requests, got %d", calls.Load())
	}
}

// Concurrent window advances and reads must not race on the shared state.
func TestSectionConcurrentAdvanceAndSummary(t *testing.T) {
	var calls atomic.Int32
	set := newSectionSet(zap.NewNop(), testFetchers(&calls, 30))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := set.advance(context.Background(), "dessert"); err != nil {
					t.Errorf("advance failed: %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := set.summary(context.Background(), "dessert"); err != nil {
					t.Errorf("summary failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	summary, err := set.summary(context.Background(), "dessert")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.VisibleCount != 30 || !summary.Finished {
		t.Fatalf("expected a fully advanced section, got %d (finished=%v)",
			summary.VisibleCount, summary.Finished)
	}
}

func TestSectionUnknownName(t *testing.T) {
	var calls atomic.Int32
	set := newSectionSet(zap.NewNop(), testFetchers(&calls, 8))

	if _, err := set.summary(context.Background(), "bogus"); err == nil {
		t.Fatal("expected an error for an unknown section")
	}
}

func TestSearchSnapshotRetriesAfterCancelledRequest(t *testing.T) {
	var calls atomic.Int32
	fetchers := func() []section.Fetcher {
		return testFetchers(&calls, 5)("dessert")
	}
	snap := newSearchSnapshot(zap.NewNop(), fetchers)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := snap.get(cancelled); err == nil {
		t.Fatal("expected an error from a cancelled load")
	}

	items, err := snap.get(context.Background())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected a retried load with 5 items, got %d", len(items))
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 fetches (one discarded, one retried), got %d", calls.Load())
	}
}

// Session changes drop the caches backed by locally authored recipes.
func TestSessionChangeInvalidatesLocalCaches(t *testing.T) {
	session := auth.NewSession()
	h := NewHandler(
		zap.NewNop(),
		provider.NewEdamamClient("", "", ""),
		provider.NewSpoonacularClient(""),
		provider.NewMealDBClient(),
		nil, nil, nil,
		auth.NewJWTManager("secret", "1h"),
		session,
		nil, nil, nil,
	)

	e, _, err := h.sections.entry("new")
	if err != nil {
		t.Fatalf("entry failed: %v", err)
	}
	e.mu.Lock()
	e.loaded = true
	e.mu.Unlock()

	h.snapshot.mu.Lock()
	h.snapshot.loaded = true
	h.snapshot.mu.Unlock()

	session.SignIn("user-1")

	e.mu.Lock()
	sectionLoaded := e.loaded
	e.mu.Unlock()
	if sectionLoaded {
		t.Error("sign-in must drop the new-recipes section cache")
	}

	h.snapshot.mu.Lock()
	snapshotLoaded := h.snapshot.loaded
	h.snapshot.mu.Unlock()
	if snapshotLoaded {
		t.Error("sign-in must drop the search snapshot")
	}
}
