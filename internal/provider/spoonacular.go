package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultSpoonacularBaseURL = "https://api.spoonacular.com"

// SpoonacularClient is a client for the Spoonacular recipe API.
type SpoonacularClient struct {
	BaseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSpoonacularClient creates a new Spoonacular API client.
func NewSpoonacularClient(apiKey string) *SpoonacularClient {
	return &SpoonacularClient{
		BaseURL:    defaultSpoonacularBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// PopularRecipes fetches a random selection, used as the "popular" feed.
func (c *SpoonacularClient) PopularRecipes(ctx context.Context) (RawItems, error) {
	u := fmt.Sprintf("%s/recipes/random?number=10&apiKey=%s", c.BaseURL, url.QueryEscape(c.apiKey))
	return c.fetchList(ctx, u, "recipes")
}

// Search runs a complex search and returns the raw results.
func (c *SpoonacularClient) Search(ctx context.Context, query string) (RawItems, error) {
	u := fmt.Sprintf("%s/recipes/complexSearch?query=%s&number=10&apiKey=%s",
		c.BaseURL, url.QueryEscape(query), url.QueryEscape(c.apiKey))
	return c.fetchList(ctx, u, "results")
}

// RecipeDetail fetches full recipe information, including nutrition.
func (c *SpoonacularClient) RecipeDetail(ctx context.Context, id string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/recipes/%s/information?includeNutrition=true&apiKey=%s",
		c.BaseURL, url.PathEscape(id), url.QueryEscape(c.apiKey))

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
		return nil, fmt.Errorf("spoonacular api error: status %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return raw, nil
}

func (c *SpoonacularClient) fetchList(ctx context.Context, u, field string) (RawItems, error) {
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
		return nil, fmt.Errorf("spoonacular api error: status %d", resp.StatusCode)
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var items []json.RawMessage
	if list, ok := body[field]; ok {
		if err := json.Unmarshal(list, &items); err != nil {
			return nil, fmt.Errorf("failed to decode %s list: %w", field, err)
		}
	}
	return items, nil
}
