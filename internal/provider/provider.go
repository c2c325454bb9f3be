// Package provider contains one HTTP adapter per external recipe source.
// Each adapter returns the provider-native item shapes untouched; unifying
// them into the canonical Recipe is the normalizer's job.
package provider

import "encoding/json"

// Tag identifies which source produced a raw record. The set is closed:
// the normalizer has one mapping table per tag.
type Tag string

const (
	TagEdamam      Tag = "edamam"
	TagSpoonacular Tag = "spoonacular"
	TagMealDB      Tag = "mealdb"
	TagLocal       Tag = "local"
)

// RawItems is a list of provider-native records, one JSON document per
// recipe-like item.
type RawItems []json.RawMessage
