// Package search provides the external semantic-search client.
package search

import (
	"context"
)

// Snippet is a ranked text fragment returned by the search service.
type Snippet struct {
	DocumentID string
	Title      string
	Content    string
	Location   string
	Score      float64
}

// Client queries the external search service for relevant snippets.
type Client interface {
	Query(ctx context.Context, query string, topK int) ([]Snippet, error)
}
