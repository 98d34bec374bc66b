// Package feedly is a minimal client for the Feedly cloud search API, used
// as the last-resort feed discovery strategy.
package feedly

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/feedscout/feedscout/app/httpclient"
)

const DefaultBaseURL = "https://cloud.feedly.com/v3"

type Client struct {
	httpClient httpclient.Client
	baseURL    string
}

func NewClient(httpClient httpclient.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// Search queries the feed search endpoint for the given query, usually a
// website URL.
func (c *Client) Search(query string) (*SearchResponse, error) {
	params := url.Values{"query": []string{query}}
	searchURL := fmt.Sprintf("%s/search/feeds?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.Get(searchURL)
	if err != nil {
		return nil, fmt.Errorf("feedly search failed: %w", err)
	}

	var searchResponse SearchResponse
	if err := json.Unmarshal(resp.Body, &searchResponse); err != nil {
		return nil, fmt.Errorf("failed to decode feedly response: %w", err)
	}

	return &searchResponse, nil
}
