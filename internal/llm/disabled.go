package llm

import (
	"context"
	"errors"
)

var errDisabled = errors.New("generation service is not configured")

type disabledClient struct{}

// NewDisabled returns a client that always fails. The chat pipeline converts
// generation failures into the canned apology, so running without a
// generation service still answers every request.
func NewDisabled() Client {
	return disabledClient{}
}

func (disabledClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	return nil, errDisabled
}

func (disabledClient) Name() string {
	return "disabled"
}
