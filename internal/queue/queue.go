// Package queue provides the processing work queue hand-off.
package queue

import (
	"context"

	"github.com/docuchat-ai/document-platform/internal/model"
)

// Queue enqueues work items for the downstream processing worker. Delivery is
// at-least-once; consumption happens outside this service.
type Queue interface {
	Enqueue(ctx context.Context, item *model.WorkItem) error
}
