package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/docuchat-ai/document-platform/internal/model"
	"github.com/docuchat-ai/document-platform/pkg/metrics"
)

// SQSAPI is the subset of the SQS client used by the queue.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSQueue sends work items to AWS SQS.
type SQSQueue struct {
	client   SQSAPI
	queueURL string
}

// NewSQSQueue constructs an SQS-backed work queue.
func NewSQSQueue(client SQSAPI, queueURL string) (*SQSQueue, error) {
	if queueURL == "" {
		return nil, fmt.Errorf("sqs queue url is required")
	}
	return &SQSQueue{client: client, queueURL: queueURL}, nil
}

// Enqueue publishes a work item as a JSON message body.
func (q *SQSQueue) Enqueue(ctx context.Context, item *model.WorkItem) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal work item: %w", err)
	}

	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		metrics.QueuePublishesTotal.WithLabelValues("sqs", "error").Inc()
		return fmt.Errorf("sqs send message: %w", err)
	}

	metrics.QueuePublishesTotal.WithLabelValues("sqs", "ok").Inc()
	return nil
}

var _ Queue = (*SQSQueue)(nil)
