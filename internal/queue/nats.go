package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/docuchat-ai/document-platform/internal/model"
	"github.com/docuchat-ai/document-platform/pkg/metrics"
)

const (
	// streamName is the JetStream stream backing the work queue.
	streamName = "DOCUMENT_PROCESSING"
)

// NATSConfig holds NATS connection configuration.
type NATSConfig struct {
	URL     string
	Subject string
	Token   string
}

// NATSQueue sends work items to a NATS JetStream stream.
type NATSQueue struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// ConnectNATS establishes a connection to NATS and ensures the processing
// stream exists.
func ConnectNATS(ctx context.Context, cfg NATSConfig) (*NATSQueue, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	q := &NATSQueue{conn: nc, js: js, subject: cfg.Subject}
	if err := q.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, err
	}
	return q, nil
}

func (q *NATSQueue) ensureStream(ctx context.Context) error {
	if _, err := q.js.Stream(ctx, streamName); err == nil {
		return nil
	}

	_, err := q.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        streamName,
		Subjects:    []string{q.subject},
		Retention:   jetstream.WorkQueuePolicy,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Document processing work items",
	})
	if err != nil {
		return fmt.Errorf("create stream: %w", err)
	}
	return nil
}

// Enqueue publishes a work item as a JSON message.
func (q *NATSQueue) Enqueue(ctx context.Context, item *model.WorkItem) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal work item: %w", err)
	}

	if _, err := q.js.Publish(ctx, q.subject, body); err != nil {
		metrics.QueuePublishesTotal.WithLabelValues("nats", "error").Inc()
		return fmt.Errorf("publish work item: %w", err)
	}

	metrics.QueuePublishesTotal.WithLabelValues("nats", "ok").Inc()
	return nil
}

// Close closes the NATS connection.
func (q *NATSQueue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// IsConnected reports whether the NATS connection is alive.
func (q *NATSQueue) IsConnected() bool {
	return q.conn != nil && q.conn.IsConnected()
}

var _ Queue = (*NATSQueue)(nil)
