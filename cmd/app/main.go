package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ShortletAssistant/internal/config"
	"ShortletAssistant/pkg/log"
	"ShortletAssistant/pkg/redis"
	"ShortletAssistant/pkg/watcher"

	"github.com/joho/godotenv"
)

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Fatalf("Error loading .env file: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()

	options := []config.ServerOption{
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithDatabase(),
		config.WithMiddleware(),
		config.WithLLMProvider(),
		config.WithTranscriber(),
		config.WithS3Client(),
		config.WithDashboardNotifier(),
		config.WithWhatsappClient(ctx),
		config.WithUtils(),
	}
	if os.Getenv("REDIS_ADDRESS") != "" {
		options = append(options, config.WithRedisServer(redis.New()))
	}

	server, err := config.NewServer(options...)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()
	assistant := server.Assistant()

	// Seeds first so that rows saved through the admin API win.
	if dir := os.Getenv("KNOWLEDGE_SEED_DIR"); dir != "" {
		seeds := watcher.NewSeedWatcher(dir, assistant, logger)
		files, err := seeds.LoadAll(ctx)
		if err != nil {
			logger.Warnf("Failed to load knowledge seeds: %v", err)
		} else {
			logger.Infof("Loaded %d knowledge seed files from %s", files, dir)
		}

		go func() {
			if err := seeds.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("Knowledge seed watcher stopped: %v", err)
			}
		}()
	}

	documents, err := assistant.LoadKnowledge(ctx)
	if err != nil {
		logger.Errorf("Failed to load stored knowledge: %v", err)
	}
	logger.Infof("Loaded %d knowledge documents from the database", documents)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
