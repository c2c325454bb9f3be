package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultEdamamBaseURL = "https://api.edamam.com/api/recipes/v2"

// EdamamClient is a client for the Edamam recipe search API.
type EdamamClient struct {
	BaseURL     string
	appID       string
	appKey      string
	accountUser string
	httpClient  *http.Client
}

// NewEdamamClient creates a new Edamam API client.
func NewEdamamClient(appID, appKey, accountUser string) *EdamamClient {
	return &EdamamClient{
		BaseURL:     defaultEdamamBaseURL,
		appID:       appID,
		appKey:      appKey,
		accountUser: accountUser,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// AfricanRecipes fetches the fixed "african" search used by the home feed.
func (c *EdamamClient) AfricanRecipes(ctx context.Context) (RawItems, error) {
	return c.Search(ctx, "african")
}

// Search runs a public recipe search and returns the raw hits.
func (c *EdamamClient) Search(ctx context.Context, query string) (RawItems, error) {
	u := fmt.Sprintf("%s?type=public&q=%s&app_id=%s&app_key=%s",
		c.BaseURL, url.QueryEscape(query), url.QueryEscape(c.appID), url.QueryEscape(c.appKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Edamam-Account-User", c.accountUser)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("edamam api error: status %d", resp.StatusCode)
	}

	var body struct {
		Hits []json.RawMessage `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return body.Hits, nil
}
