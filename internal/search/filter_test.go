package search

import (
	"reflect"
	"testing"

	"recipe-planner/internal/recipe"
)

func pool() []recipe.Recipe {
	return []recipe.Recipe{
		{ID: "1", Label: "Poulet Yassa", Category: "dinner", DurationMinutes: 45},
		{ID: "2", Label: "Tarte aux pommes", Category: "dessert", DurationMinutes: 60},
		{ID: "3", Label: "Poulet DG", Category: "dinner", DurationMinutes: 25},
		{ID: "4", Label: "Salade rapide", Category: "lunch", DurationMinutes: 10},
	}
}

func labels(items []recipe.Recipe) []string {
	out := make([]string, len(items))
	for i, r := range items {
		out[i] = r.Label
	}
	return out
}

func TestFilterQuery(t *testing.T) {
	got := Filter(pool(), "poulet", nil)

	want := []string{"Poulet Yassa", "Poulet DG"}
	if !reflect.DeepEqual(labels(got), want) {
		t.Fatalf("expected %v, got %v", want, labels(got))
	}
}

func TestFilterBlankQueryMatchesAll(t *testing.T) {
	if got := Filter(pool(), "   ", nil); len(got) != 4 {
		t.Fatalf("blank query should match everything, got %d items", len(got))
	}
}

func TestFilterFacets(t *testing.T) {
	t.Run("max duration", func(t *testing.T) {
		got := Filter(pool(), "", MaxDuration(30))
		want := []string{"Poulet DG", "Salade rapide"}
		if !reflect.DeepEqual(labels(got), want) {
			t.Fatalf("expected %v, got %v", want, labels(got))
		}
	})

	t.Run("duration between", func(t *testing.T) {
		got := Filter(pool(), "", DurationBetween(30, 60))
		want := []string{"Poulet Yassa", "Tarte aux pommes"}
		if !reflect.DeepEqual(labels(got), want) {
			t.Fatalf("expected %v, got %v", want, labels(got))
		}
	})

	t.Run("category", func(t *testing.T) {
		got := Filter(pool(), "", Category("Dessert"))
		want := []string{"Tarte aux pommes"}
		if !reflect.DeepEqual(labels(got), want) {
			t.Fatalf("expected %v, got %v", want, labels(got))
		}
	})
}

// Query and facet compose as a logical AND.
func TestFilterQueryAndFacetCompose(t *testing.T) {
	got := Filter(pool(), "poulet", MaxDuration(30))

	want := []string{"Poulet DG"}
	if !reflect.DeepEqual(labels(got), want) {
		t.Fatalf("expected %v, got %v", want, labels(got))
	}
}

func TestFilterIdempotent(t *testing.T) {
	once := Filter(pool(), "poulet", nil)
	twice := Filter(once, "poulet", nil)

	if !reflect.DeepEqual(labels(once), labels(twice)) {
		t.Fatalf("filtering a filtered list changed it: %v vs %v", labels(once), labels(twice))
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	items := pool()
	before := labels(items)

	_ = Filter(items, "tarte", MaxDuration(30))

	if !reflect.DeepEqual(labels(items), before) {
		t.Fatal("input slice was mutated")
	}
}

func TestFilterEmptyResult(t *testing.T) {
	got := Filter(pool(), "couscous", nil)
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", labels(got))
	}
}
