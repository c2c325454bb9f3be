// Package planner builds and persists planned meals: the association
// between a user, a calendar date, a meal slot and a recipe reference.
package planner

import (
	"fmt"
	"time"

	"recipe-planner/internal/recipe"
)

// Slot is a meal slot within a day.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
)

// DateLayout is the calendar-date format used throughout plan records.
const DateLayout = "2006-01-02"

// Record is one planned meal. Exactly one of RecipeID (a local recipe
// foreign key) and RecipeExternalID (an opaque provider-native id) is set.
type Record struct {
	ID               int64     `json:"id" db:"id"`
	UserID           string    `json:"user_id" db:"user_id"`
	RecipeID         string    `json:"recipe_id,omitempty" db:"recipe_id"`
	RecipeExternalID string    `json:"recipe_external_id,omitempty" db:"recipe_external_id"`
	RecipeTitle      string    `json:"recipe_title" db:"recipe_title"`
	RecipeImageURL   string    `json:"recipe_image_url" db:"recipe_image_url"`
	RecipeSource     string    `json:"recipe_source" db:"recipe_source"`
	MealDate         string    `json:"meal_date" db:"meal_date"`
	MealType         Slot      `json:"meal_type" db:"meal_type"`
	Portions         int       `json:"portions" db:"portions"`
	Notes            string    `json:"notes" db:"notes"`
	Notified         bool      `json:"is_notified" db:"is_notified"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// BuildRecord assembles a plan record from a selected recipe and user
// input. It is pure assembly: persistence and reminder scheduling belong to
// the caller. Portions are clamped to a minimum of 1 and an empty slot
// defaults to dinner, matching the selector controls.
func BuildRecord(r recipe.Recipe, userID, date string, slot Slot, portions int, notes string) (Record, error) {
	if userID == "" {
		return Record{}, fmt.Errorf("a signed-in user is required to plan a meal")
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return Record{}, fmt.Errorf("invalid meal date %q: %w", date, err)
	}
	switch slot {
	case SlotBreakfast, SlotLunch, SlotDinner:
	case "":
		slot = SlotDinner
	default:
		return Record{}, fmt.Errorf("unknown meal slot %q", slot)
	}
	if portions < 1 {
		portions = 1
	}

	rec := Record{
		UserID:         userID,
		RecipeTitle:    r.Label,
		RecipeImageURL: r.Image,
		RecipeSource:   r.Source,
		MealDate:       date,
		MealType:       slot,
		Portions:       portions,
		Notes:          notes,
	}
	if r.IsLocal() {
		rec.RecipeID = r.ID
	} else {
		rec.RecipeExternalID = r.ID
	}
	return rec, nil
}
