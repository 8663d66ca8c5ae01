package main

import (
	"context"
	"log"
	"time"

	"pokedex-backend/internal/config"
	"pokedex-backend/internal/di"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"
)

var (
	// chiLambda wraps the chi router for API Gateway HTTP API events.
	chiLambda *chiadapter.ChiLambdaV2

	container *di.Container
)

// init runs once per cold start.
func init() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	chiLambda = chiadapter.NewV2(container.Router)

	container.Logger.Info("lambda initialized",
		zap.Duration("init_duration", container.ColdStart.SinceStart()),
		zap.String("table", cfg.Database.TableName),
	)
}

// Handler proxies an API Gateway v2 event through the router.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	// API Gateway's request ID doubles as ours unless the caller sent one.
	if req.RequestContext.RequestID != "" {
		if req.Headers == nil {
			req.Headers = make(map[string]string)
		}
		if _, ok := req.Headers["x-request-id"]; !ok {
			req.Headers["x-request-id"] = req.RequestContext.RequestID
		}
	}

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	coldStart := container.ColdStart.MarkServed()
	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		resp.Headers["X-Cold-Start-Duration"] = container.ColdStart.SinceStart().String()
	}

	container.Logger.Debug("lambda response",
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.String("request_id", req.RequestContext.RequestID),
		zap.Int("status_code", resp.StatusCode),
		zap.Bool("cold_start", coldStart),
	)

	return resp, err
}

func main() {
	defer container.Close()
	lambda.Start(Handler)
}
