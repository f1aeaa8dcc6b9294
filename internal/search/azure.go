package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const searchAPIVersion = "2023-11-01"

// AzureClient queries an Azure AI Search index over its REST API.
type AzureClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	index      string
}

// NewAzureClient creates a new Azure AI Search client.
func NewAzureClient(endpoint, apiKey, index string) (*AzureClient, error) {
	if endpoint == "" {
		return nil, errors.New("search endpoint is required")
	}
	if apiKey == "" {
		return nil, errors.New("search API key is required")
	}
	if index == "" {
		return nil, errors.New("search index name is required")
	}
	return &AzureClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		apiKey:     apiKey,
		index:      index,
	}, nil
}

type searchRequest struct {
	Search    string `json:"search"`
	Top       int    `json:"top"`
	QueryType string `json:"queryType"`
}

type searchDocument struct {
	DocumentID string  `json:"documentId"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Page       string  `json:"page"`
	Score      float64 `json:"@search.score"`
}

type searchResponse struct {
	Value []searchDocument `json:"value"`
}

// Query runs a semantic search and returns the ranked snippets.
func (c *AzureClient) Query(ctx context.Context, query string, topK int) ([]Snippet, error) {
	if topK <= 0 {
		topK = 5
	}

	body, err := json.Marshal(searchRequest{
		Search:    query,
		Top:       topK,
		QueryType: "semantic",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s", c.endpoint, c.index, searchAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("search service returned %d: %s", resp.StatusCode, string(payload))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	snippets := make([]Snippet, 0, len(out.Value))
	for _, doc := range out.Value {
		snippets = append(snippets, Snippet{
			DocumentID: doc.DocumentID,
			Title:      doc.Title,
			Content:    doc.Content,
			Location:   doc.Page,
			Score:      doc.Score,
		})
	}
	return snippets, nil
}

var _ Client = (*AzureClient)(nil)
