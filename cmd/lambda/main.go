package main

import (
	"context"

	"github.com/ammiranda/forest_service/cache"
	"github.com/ammiranda/forest_service/config"
	"github.com/ammiranda/forest_service/internal/lambda"
	"github.com/ammiranda/forest_service/logger"
	"github.com/ammiranda/forest_service/repository"
	"github.com/ammiranda/forest_service/tree"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	provider, err := config.NewProviderFromEnv(ctx)
	if err != nil {
		panic(err)
	}
	cfg, err := config.Load(ctx, provider)
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.LogDebug)
	defer log.Sync()

	// Repository and cache live for the lifetime of the execution environment
	repo, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open repository", zap.Error(err))
	}

	forestCache, err := cache.New(ctx, cfg.Cache, log)
	if err != nil {
		log.Fatal("failed to initialize cache", zap.Error(err))
	}

	handler := lambda.NewHandler(tree.NewEngine(repo, log), forestCache, log)
	awslambda.Start(handler.Handle)
}
