// Package search filters the aggregated in-memory recipe list. It never
// re-fetches: the input is the read-mostly snapshot built by the
// aggregator, and the output is a derived view of it.
package search

import (
	"strings"

	"recipe-planner/internal/recipe"
)

// Facet is a structured, non-text predicate over a recipe.
type Facet func(recipe.Recipe) bool

// All matches every recipe.
func All() Facet {
	return func(recipe.Recipe) bool { return true }
}

// MaxDuration matches recipes taking at most max minutes.
func MaxDuration(max int) Facet {
	return func(r recipe.Recipe) bool {
		return r.DurationMinutes > 0 && r.DurationMinutes <= max
	}
}

// DurationBetween matches recipes with lo < duration <= hi.
func DurationBetween(lo, hi int) Facet {
	return func(r recipe.Recipe) bool {
		return r.DurationMinutes > lo && r.DurationMinutes <= hi
	}
}

// Category matches recipes with the given category, case-insensitively.
func Category(category string) Facet {
	want := strings.ToLower(category)
	return func(r recipe.Recipe) bool {
		return strings.ToLower(r.Category) == want
	}
}

// Filter returns the recipes whose label contains query (case-insensitive
// substring; blank matches all) and that satisfy the facet. Query and facet
// compose as a logical AND. The result is a new slice preserving the
// relative order of items; items is never mutated.
func Filter(items []recipe.Recipe, query string, facet Facet) []recipe.Recipe {
	if facet == nil {
		facet = All()
	}
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]recipe.Recipe, 0, len(items))
	for _, r := range items {
		if q != "" && !strings.Contains(strings.ToLower(r.Label), q) {
			continue
		}
		if !facet(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}
