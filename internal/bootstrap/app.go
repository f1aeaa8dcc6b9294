// Package bootstrap wires configuration into a runnable application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"

	"github.com/docuchat-ai/document-platform/internal/config"
	"github.com/docuchat-ai/document-platform/internal/handler"
	"github.com/docuchat-ai/document-platform/internal/llm"
	"github.com/docuchat-ai/document-platform/internal/queue"
	"github.com/docuchat-ai/document-platform/internal/search"
	"github.com/docuchat-ai/document-platform/internal/service"
	"github.com/docuchat-ai/document-platform/internal/storage/blob"
	"github.com/docuchat-ai/document-platform/internal/storage/record"
	"github.com/docuchat-ai/document-platform/pkg/logger"
)

// App is the assembled application.
type App struct {
	Router http.Handler
	closer func()
}

// Close releases long-lived connections.
func (a *App) Close() {
	if a.closer != nil {
		a.closer()
	}
}

// Build constructs every collaborator from config and assembles the router.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	var awsLoaded bool
	var awsCfg aws.Config

	loadAWS := func() error {
		if awsLoaded {
			return nil
		}
		c, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = c
		awsLoaded = true
		return nil
	}

	// Blob store
	var blobs blob.Store
	switch cfg.BlobBackend {
	case "local":
		store, err := blob.NewLocalStore(cfg.LocalDir)
		if err != nil {
			return nil, fmt.Errorf("create local blob store: %w", err)
		}
		blobs = store
	default:
		if err := loadAWS(); err != nil {
			return nil, err
		}
		store, err := blob.NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3Bucket)
		if err != nil {
			return nil, fmt.Errorf("create s3 blob store: %w", err)
		}
		blobs = store
	}

	// Record store
	var documents record.DocumentStore
	var conversations record.ConversationStore
	switch cfg.RecordBackend {
	case "memory":
		mem := record.NewMemoryStore()
		documents, conversations = mem, mem
	default:
		if err := loadAWS(); err != nil {
			return nil, err
		}
		store, err := record.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.DocumentsTable, cfg.ConversationsTable)
		if err != nil {
			return nil, fmt.Errorf("create dynamo record store: %w", err)
		}
		documents, conversations = store, store
	}

	// Work queue
	var jobs queue.Queue
	var closer func()
	readyChecks := map[string]handler.ReadyChecker{}
	switch cfg.QueueBackend {
	case "nats":
		nq, err := queue.ConnectNATS(ctx, queue.NATSConfig{
			URL:     cfg.NATSURL,
			Subject: cfg.NATSSubject,
			Token:   cfg.NATSToken,
		})
		if err != nil {
			return nil, fmt.Errorf("connect work queue: %w", err)
		}
		jobs = nq
		closer = nq.Close
		readyChecks["nats"] = nq
	default:
		if err := loadAWS(); err != nil {
			return nil, err
		}
		sq, err := queue.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL)
		if err != nil {
			return nil, fmt.Errorf("create sqs queue: %w", err)
		}
		jobs = sq
	}

	// Search service
	var searcher search.Client
	if cfg.SearchEndpoint != "" && cfg.SearchAPIKey != "" {
		client, err := search.NewAzureClient(cfg.SearchEndpoint, cfg.SearchAPIKey, cfg.SearchIndex)
		if err != nil {
			return nil, fmt.Errorf("create search client: %w", err)
		}
		searcher = client
	} else {
		log.Warn("search service not configured, chat answers will carry no citations")
		searcher = search.NewDisabled()
	}

	// Generation service
	var generator llm.Client
	if cfg.LLMAPIKey != "" {
		client, err := llm.NewClient(llm.Provider(cfg.LLMProvider), llm.Options{
			APIKey:   cfg.LLMAPIKey,
			Endpoint: cfg.LLMEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("create generation client: %w", err)
		}
		generator = client
	} else {
		log.Warn("generation service not configured, chat will return the fallback message")
		generator = llm.NewDisabled()
	}

	// Services
	uploadSvc := service.NewUploadService(blobs, documents, jobs, service.UploadConfig{
		MaxUploadBytes:   cfg.MaxUploadBytes,
		AllowedMIMETypes: cfg.AllowedMIMETypes,
		KeyPrefix:        cfg.S3Prefix,
	}, log)
	chatSvc := service.NewChatService(conversations, searcher, generator, service.ChatConfig{
		TopK:        cfg.SearchTopK,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
	}, log)

	// Handlers
	healthHandler := handler.NewHealthHandler(readyChecks)
	documentHandler := handler.NewDocumentHandler(uploadSvc, cfg.MaxUploadBytes, log)
	chatHandler := handler.NewChatHandler(chatSvc, log)

	router := handler.NewRouter(cfg, log, healthHandler, documentHandler, chatHandler)

	log.Info("application assembled",
		zap.String("blob_backend", cfg.BlobBackend),
		zap.String("record_backend", cfg.RecordBackend),
		zap.String("queue_backend", cfg.QueueBackend),
		zap.String("llm_provider", cfg.LLMProvider),
	)

	return &App{Router: router, closer: closer}, nil
}
