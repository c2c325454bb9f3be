package recipe

import (
	"encoding/json"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"recipe-planner/internal/provider"
)

// placeholderLabel stands in for sources that omit a display title.
const placeholderLabel = "Recipe"

var placeholderCategories = []string{"breakfast", "lunch", "dinner"}

// Normalize maps one provider-native record into the canonical Recipe.
// It is a pure field-mapping per provider tag and never fails: missing or
// malformed fields degrade to placeholders, not errors.
func Normalize(tag provider.Tag, raw json.RawMessage) Recipe {
	switch tag {
	case provider.TagEdamam:
		return normalizeEdamam(raw)
	case provider.TagSpoonacular:
		return normalizeSpoonacular(raw)
	case provider.TagMealDB:
		return normalizeMealDB(raw)
	default:
		return normalizeLocal(raw)
	}
}

func normalizeEdamam(raw json.RawMessage) Recipe {
	// Search responses wrap each record in {"recipe": {...}}; tolerate both
	// the wrapped and the bare shape.
	var hit struct {
		Recipe json.RawMessage `json:"recipe"`
	}
	_ = json.Unmarshal(raw, &hit)
	if len(hit.Recipe) > 0 && string(hit.Recipe) != "null" {
		raw = hit.Recipe
	}

	var r struct {
		URI        string   `json:"uri"`
		Label      string   `json:"label"`
		Title      string   `json:"title"`
		Image      string   `json:"image"`
		Source     string   `json:"source"`
		SourceName string   `json:"sourceName"`
		URL        string   `json:"url"`
		TotalTime  float64  `json:"totalTime"`
		MealType   []string `json:"mealType"`
	}
	_ = json.Unmarshal(raw, &r)

	title := firstNonEmpty(r.Label, r.Title)
	return Recipe{
		ID:              deriveID(r.URI, r.URL, title),
		Label:           firstNonEmpty(title, placeholderLabel),
		Image:           r.Image,
		Source:          firstNonEmpty(r.Source, r.SourceName),
		URL:             r.URL,
		Category:        firstNonEmpty(mealTypeCategory(r.MealType), placeholderCategory()),
		DurationMinutes: orPlaceholderDuration(int(r.TotalTime)),
		Raw:             raw,
	}
}

func normalizeSpoonacular(raw json.RawMessage) Recipe {
	var r struct {
		ID             json.Number `json:"id"`
		RecipeID       json.Number `json:"recipeId"`
		Title          string      `json:"title"`
		Name           string      `json:"name"`
		Image          string      `json:"image"`
		ImageURL       string      `json:"imageUrl"`
		SourceName     string      `json:"sourceName"`
		SourceURL      string      `json:"sourceUrl"`
		ReadyInMinutes int         `json:"readyInMinutes"`
		DishTypes      []string    `json:"dishTypes"`
	}
	_ = json.Unmarshal(raw, &r)

	title := firstNonEmpty(r.Title, r.Name)
	category := ""
	if len(r.DishTypes) > 0 {
		category = strings.ToLower(r.DishTypes[0])
	}
	return Recipe{
		ID:              deriveID(r.ID.String(), r.RecipeID.String(), title),
		Label:           firstNonEmpty(title, placeholderLabel),
		Image:           firstNonEmpty(r.Image, r.ImageURL),
		Source:          r.SourceName,
		URL:             r.SourceURL,
		Category:        firstNonEmpty(category, placeholderCategory()),
		DurationMinutes: orPlaceholderDuration(r.ReadyInMinutes),
		Raw:             raw,
	}
}

func normalizeMealDB(raw json.RawMessage) Recipe {
	var m struct {
		IDMeal      string `json:"idMeal"`
		ID          string `json:"id"`
		StrMeal     string `json:"strMeal"`
		Name        string `json:"name"`
		StrThumb    string `json:"strMealThumb"`
		Thumbnail   string `json:"thumbnail"`
		StrArea     string `json:"strArea"`
		StrCategory string `json:"strCategory"`
		StrSource   string `json:"strSource"`
	}
	_ = json.Unmarshal(raw, &m)

	title := firstNonEmpty(m.StrMeal, m.Name)
	return Recipe{
		ID:              deriveID(firstNonEmpty(m.IDMeal, m.ID), "", title),
		Label:           firstNonEmpty(title, placeholderLabel),
		Image:           firstNonEmpty(m.StrThumb, m.Thumbnail),
		Source:          m.StrArea,
		URL:             m.StrSource,
		Category:        strings.ToLower(firstNonEmpty(m.StrCategory, "dessert")),
		DurationMinutes: placeholderDuration(),
		Raw:             raw,
	}
}

func normalizeLocal(raw json.RawMessage) Recipe {
	var r struct {
		ID        string `json:"id"`
		UUID      string `json:"uuid"`
		Title     string `json:"title"`
		Name      string `json:"name"`
		ImageURL  string `json:"image_url"`
		Image     string `json:"image"`
		Source    string `json:"source"`
		URL       string `json:"url"`
		Category  string `json:"category"`
		TotalTime int    `json:"total_time"`
		Duration  int    `json:"duration"`
	}
	_ = json.Unmarshal(raw, &r)

	title := firstNonEmpty(r.Title, r.Name)
	return Recipe{
		ID:              deriveID(firstNonEmpty(r.ID, r.UUID), "", title),
		Label:           firstNonEmpty(title, placeholderLabel),
		Image:           firstNonEmpty(r.ImageURL, r.Image),
		Source:          firstNonEmpty(r.Source, "local"),
		URL:             r.URL,
		Category:        firstNonEmpty(strings.ToLower(r.Category), "lunch"),
		DurationMinutes: orPlaceholderDuration(firstPositive(r.TotalTime, r.Duration)),
		Raw:             raw,
	}
}

// deriveID picks the most stable identifier available: native id, then
// native URI, then a stringification of the title. The generated UUID is a
// last resort for records with no identifying content at all; such ids are
// not stable across fetches and are only safe for ephemeral lists.
func deriveID(nativeID, uri, title string) string {
	switch {
	case nativeID != "":
		return nativeID
	case uri != "":
		return uri
	case title != "":
		return strconv.Quote(title)
	default:
		return uuid.NewString()
	}
}

func mealTypeCategory(mealTypes []string) string {
	for _, mt := range mealTypes {
		switch c := strings.ToLower(mt); c {
		case "breakfast", "lunch", "dinner":
			return c
		case "lunch/dinner":
			return "lunch"
		}
	}
	return ""
}

// placeholderCategory and placeholderDuration stand in when a provider does
// not classify by meal or report a cooking time. The values are explicitly
// non-deterministic placeholder data, not estimates.
func placeholderCategory() string {
	return placeholderCategories[rand.IntN(len(placeholderCategories))]
}

func placeholderDuration() int {
	return 15 + rand.IntN(60)
}

func orPlaceholderDuration(d int) int {
	if d > 0 {
		return d
	}
	return placeholderDuration()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
