package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultMealDBBaseURL = "https://www.themealdb.com/api/json/v1/1"

// MealDBClient is a client for TheMealDB API.
type MealDBClient struct {
	BaseURL    string
	httpClient *http.Client
}

// NewMealDBClient creates a new TheMealDB API client.
func NewMealDBClient() *MealDBClient {
	return &MealDBClient{
		BaseURL:    defaultMealDBBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// DessertRecipes fetches the dessert category listing.
func (c *MealDBClient) DessertRecipes(ctx context.Context) (RawItems, error) {
	return c.fetchMeals(ctx, fmt.Sprintf("%s/filter.php?c=Dessert", c.BaseURL))
}

// Search looks meals up by name.
func (c *MealDBClient) Search(ctx context.Context, query string) (RawItems, error) {
	return c.fetchMeals(ctx, fmt.Sprintf("%s/search.php?s=%s", c.BaseURL, url.QueryEscape(query)))
}

// MealDetail fetches a single meal by id. Returns nil when the id is unknown.
func (c *MealDBClient) MealDetail(ctx context.Context, id string) (json.RawMessage, error) {
	meals, err := c.fetchMeals(ctx, fmt.Sprintf("%s/lookup.php?i=%s", c.BaseURL, url.QueryEscape(id)))
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, nil
	}
	return meals[0], nil
}

func (c *MealDBClient) fetchMeals(ctx context.Context, u string) (RawItems, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("themealdb api error: status %d", resp.StatusCode)
	}

	// TheMealDB returns {"meals": null} for empty result sets.
	var body struct {
		Meals []json.RawMessage `json:"meals"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return body.Meals, nil
}
