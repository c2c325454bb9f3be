// Package clipper imports a recipe from an arbitrary web page into the
// local store: fetch the page, strip the noise, let the assistant extract
// structured fields, persist.
package clipper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"recipe-planner/internal/assistant"
	"recipe-planner/internal/recipe"
)

// RecipeSaver persists an extracted recipe.
type RecipeSaver interface {
	Insert(ctx context.Context, rec recipe.LocalRecipe, steps []recipe.Step) (*recipe.LocalRecipe, error)
}

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	store   RecipeSaver
	textGen assistant.TextGenerator
}

// ExtractedRecipe represents the data structured by the AI.
type ExtractedRecipe struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	PrepTime    string   `json:"prep_time"`
	Servings    string   `json:"servings"`
}

// NewClipper creates a new Clipper instance.
func NewClipper(store RecipeSaver, textGen assistant.TextGenerator) *Clipper {
	return &Clipper{store: store, textGen: textGen}
}

// ClipURL fetches the URL, extracts the recipe using AI, and saves it to
// the local store under the given author.
func (c *Clipper) ClipURL(ctx context.Context, url, userID string) (*recipe.LocalRecipe, error) {
	content, err := c.fetchAndCleanHTML(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe details from the following page content.
Return the result strictly as a JSON object with this structure:
{
  "title": "Recipe Title",
  "ingredients": ["item 1", "item 2", ...],
  "steps": ["Step 1 description", "Step 2 description", ...],
  "prep_time": "e.g. 30 mins",
  "servings": "e.g. 4 people"
}
Return ONLY the raw JSON string. Do not wrap the response in markdown code blocks.

Page Content:
%s
`, content)

	llmResponse, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted ExtractedRecipe
	if err := json.Unmarshal([]byte(llmResponse), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, llmResponse)
	}

	rec := recipe.LocalRecipe{
		Title:           extracted.Title,
		Description:     fmt.Sprintf("Imported from %s", url),
		IngredientLines: extracted.Ingredients,
		TotalTime:       parseMinutes(extracted.PrepTime),
		CreatedBy:       userID,
	}
	if y := parseLeadingInt(extracted.Servings); y > 0 {
		rec.Yield = &y
	}

	steps := make([]recipe.Step, 0, len(extracted.Steps))
	for i, s := range extracted.Steps {
		steps = append(steps, recipe.Step{StepNumber: i + 1, Instruction: s})
	}

	saved, err := c.store.Insert(ctx, rec, steps)
	if err != nil {
		return nil, fmt.Errorf("failed to save clipped recipe: %w", err)
	}
	return saved, nil
}

func (c *Clipper) fetchAndCleanHTML(url string) (string, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}

// parseMinutes reads a loose "30 mins" / "1 h" style duration.
func parseMinutes(s string) int {
	n := parseLeadingInt(s)
	if n == 0 {
		return 0
	}
	if strings.Contains(strings.ToLower(s), "h") {
		return n * 60
	}
	return n
}

func parseLeadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
