package search

import (
	"context"
	"errors"
)

var errDisabled = errors.New("search service is not configured")

type disabledClient struct{}

// NewDisabled returns a client that always fails. The chat pipeline degrades
// retrieval failures to empty context, so running without a search service
// yields answers with no citations.
func NewDisabled() Client {
	return disabledClient{}
}

func (disabledClient) Query(ctx context.Context, query string, topK int) ([]Snippet, error) {
	return nil, errDisabled
}
