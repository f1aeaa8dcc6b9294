package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"

	"github.com/docuchat-ai/document-platform/internal/bootstrap"
	"github.com/docuchat-ai/document-platform/internal/config"
	"github.com/docuchat-ai/document-platform/pkg/logger"
)

var (
	initOnce sync.Once
	initErr  error
	proxy    *chiadapter.ChiLambdaV2
)

// newAdapter wraps the router for API Gateway v2 proxying. Handlers that are
// not already a chi mux get mounted under one.
func newAdapter(h http.Handler) *chiadapter.ChiLambdaV2 {
	mux, ok := h.(*chi.Mux)
	if !ok {
		mux = chi.NewRouter()
		mux.Mount("/", h)
	}
	return chiadapter.NewV2(mux)
}

func initApp() {
	cfg := config.Load()

	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		initErr = err
		return
	}

	app, err := bootstrap.Build(context.Background(), cfg, lg)
	if err != nil {
		initErr = err
		return
	}

	proxy = newAdapter(app.Router)
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		body, _ := json.Marshal(map[string]string{"error": "bootstrap failed"})
		return events.APIGatewayV2HTTPResponse{
			StatusCode: 500,
			Body:       string(body),
			Headers:    map[string]string{"Content-Type": "application/json"},
		}, initErr
	}
	return proxy.ProxyWithContextV2(ctx, req)
}

func main() {
	lambda.Start(handler)
}
