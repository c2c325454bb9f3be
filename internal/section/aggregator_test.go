package section

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"recipe-planner/internal/provider"
)

func rawMeals(names ...string) provider.RawItems {
	out := make(provider.RawItems, len(names))
	for i, n := range names {
		out[i] = json.RawMessage(fmt.Sprintf(`{"idMeal": "%d", "strMeal": %q}`, i+1, n))
	}
	return out
}

func TestLoadPartialFailure(t *testing.T) {
	fetchOK := Fetcher{
		Tag: provider.TagMealDB,
		Fetch: func(ctx context.Context) (provider.RawItems, error) {
			return rawMeals("Crumble", "Tiramisu", "Flan", "Brownie", "Clafoutis"), nil
		},
	}
	fetchBroken := Fetcher{
		Tag: provider.TagEdamam,
		Fetch: func(ctx context.Context) (provider.RawItems, error) {
			return nil, fmt.Errorf("edamam: 502 bad gateway")
		},
	}

	st := NewState()
	NewLoader(nil).Load(context.Background(), st, fetchOK, fetchBroken)

	if len(st.Items) != 5 {
		t.Fatalf("expected the 5 successful items, got %d", len(st.Items))
	}
	if st.Err == "" {
		t.Fatal("failed fetcher must be recorded in the section error")
	}
	if !strings.Contains(st.Err, "502") {
		t.Errorf("error should carry the fetch failure, got %q", st.Err)
	}
	if st.Loading {
		t.Fatal("loading must clear after the load settles")
	}
}

func TestLoadAllFail(t *testing.T) {
	broken := func(msg string) Fetcher {
		return Fetcher{
			Tag: provider.TagSpoonacular,
			Fetch: func(ctx context.Context) (provider.RawItems, error) {
				return nil, fmt.Errorf("%s", msg)
			},
		}
	}

	st := NewState()
	NewLoader(nil).Load(context.Background(), st, broken("first down"), broken("second down"))

	if len(st.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(st.Items))
	}
	if !st.Finished {
		t.Fatal("an empty section is finished")
	}
	if !strings.Contains(st.Err, "first down") || !strings.Contains(st.Err, "second down") {
		t.Errorf("both failures must be recorded, got %q", st.Err)
	}
}

// Results concatenate in registration order even when a later fetcher
// finishes first.
func TestLoadPreservesRegistrationOrder(t *testing.T) {
	slowDone := make(chan struct{})

	slow := Fetcher{
		Tag: provider.TagMealDB,
		Fetch: func(ctx context.Context) (provider.RawItems, error) {
			<-slowDone
			return rawMeals("First"), nil
		},
	}
	fast := Fetcher{
		Tag: provider.TagMealDB,
		Fetch: func(ctx context.Context) (provider.RawItems, error) {
			defer close(slowDone)
			return rawMeals("Second"), nil
		},
	}

	st := NewState()
	NewLoader(nil).Load(context.Background(), st, slow, fast)

	if len(st.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(st.Items))
	}
	if st.Items[0].Label != "First" || st.Items[1].Label != "Second" {
		t.Errorf("expected registration order [First Second], got [%s %s]",
			st.Items[0].Label, st.Items[1].Label)
	}
}

// A load whose context was cancelled must not mutate the state: a late
// result after teardown cannot overwrite a stale slot.
func TestLoadCancelledLeavesStateUntouched(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	fetch := Fetcher{
		Tag: provider.TagMealDB,
		Fetch: func(ctx context.Context) (provider.RawItems, error) {
			cancel()
			return rawMeals("Late"), nil
		},
	}

	st := NewState()
	NewLoader(nil).Load(ctx, st, fetch)

	if len(st.Items) != 0 {
		t.Fatalf("cancelled load must not install items, got %d", len(st.Items))
	}
	if !st.Loading {
		t.Fatal("cancelled load must not clear the loading flag")
	}
}

func TestLoadEmptyProvider(t *testing.T) {
	empty := Fetcher{
		Tag: provider.TagMealDB,
		Fetch: func(ctx context.Context) (provider.RawItems, error) {
			return nil, nil
		},
	}

	st := NewState()
	done := make(chan struct{})
	go func() {
		NewLoader(nil).Load(context.Background(), st, empty)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("load did not settle")
	}

	if st.Err != "" {
		t.Errorf("an empty result is not an error, got %q", st.Err)
	}
	if !st.Finished {
		t.Fatal("empty section must finish")
	}
}
