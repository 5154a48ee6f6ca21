package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ShortletAssistant/database/postgres"
	"ShortletAssistant/internal/api/assistant"
	assistantHandler "ShortletAssistant/internal/api/assistant/handler"
	assistantRepository "ShortletAssistant/internal/api/assistant/repository"
	assistantService "ShortletAssistant/internal/api/assistant/service"
	"ShortletAssistant/internal/middleware"
	"ShortletAssistant/pkg/audio"
	"ShortletAssistant/pkg/intent"
	"ShortletAssistant/pkg/knowledge"
	"ShortletAssistant/pkg/llm"
	"ShortletAssistant/pkg/rag"
	"ShortletAssistant/pkg/redis"
	"ShortletAssistant/pkg/s3"
	"ShortletAssistant/pkg/utils"
	websocketPkg "ShortletAssistant/pkg/websocket"
	"ShortletAssistant/pkg/whatsapp"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	db             *sqlx.DB
	log            *logrus.Logger
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	handlers       []handler
	store          knowledge.IStore
	llmProvider    llm.Provider
	transcriber    audio.ITranscriber
	redisServer    redis.IRedis
	dashboard      websocketPkg.IDashboard
	whatsappClient whatsapp.IWhatsappSender
	s3Client       s3.ItfS3

	assistant assistantService.IAssistantService
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.store == nil {
		server.store = knowledge.NewStore()
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

// WithRedisServer stores call sessions in Redis. Without it sessions live in
// process memory.
func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithKnowledgeStore(store knowledge.IStore) ServerOption {
	return func(s *Server) error {
		s.store = store
		return nil
	}
}

// WithLLMProvider picks the model backend from LLM_PROVIDER. A missing key
// leaves the chat channel on its fallback answers.
func WithLLMProvider() ServerOption {
	return func(s *Server) error {
		provider, err := llm.New()
		if err != nil {
			if s.log != nil {
				s.log.Warnf("Language model disabled: %v", err)
			}
			return nil
		}
		s.llmProvider = provider
		return nil
	}
}

func WithTranscriber() ServerOption {
	return func(s *Server) error {
		transcriber, err := audio.NewTranscriptionService()
		if err != nil {
			if s.log != nil {
				s.log.Warnf("Voice note transcription disabled: %v", err)
			}
			return nil
		}
		s.transcriber = transcriber
		return nil
	}
}

func WithDashboardNotifier() ServerOption {
	return func(s *Server) error {
		url := os.Getenv("HOST_DASHBOARD_WS_URL")
		if url == "" {
			return nil
		}
		s.dashboard = websocketPkg.NewDashboardClient(url, s.log)
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

// WithS3Client is skipped when AWS_BUCKET_NAME is unset; bundle import and
// export then answer 503.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		if os.Getenv("AWS_BUCKET_NAME") == "" {
			return nil
		}
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithWhatsappClient(ctx context.Context) ServerOption {
	return func(s *Server) error {
		if enabled, _ := strconv.ParseBool(os.Getenv("WHATSAPP_ENABLED")); !enabled {
			return nil
		}
		client, err := whatsapp.New(ctx, s.log)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize WhatsApp client: %v", err)
			}
			return fmt.Errorf("failed to create WhatsApp client: %w", err)
		}
		s.whatsappClient = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func envInt(key string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return value
}

func (s *Server) newPipelines() assistantService.Pipelines {
	prompt := rag.PromptConfig{
		PlatformName:   os.Getenv("PLATFORM_NAME"),
		CurrencySymbol: os.Getenv("CURRENCY_SYMBOL"),
	}
	// LLM_TIMEOUT_SECONDS is the model budget of one query, shared by the
	// classifier and the generator and capped under the chat request deadline.
	classifyTimeout, generateTimeout := rag.ModelBudget(
		time.Duration(envInt("LLM_TIMEOUT_SECONDS", 8))*time.Second,
		assistant.QueryTimeout,
	)

	voiceGenerator := rag.NewGenerator(rag.GeneratorConfig{
		Strategy:     rag.ParseStrategy(os.Getenv("VOICE_STRATEGY"), rag.StrategyExtractive),
		Prompt:       prompt,
		ModelTimeout: generateTimeout,
	}, s.llmProvider, s.log)
	chatGenerator := rag.NewGenerator(rag.GeneratorConfig{
		Strategy:     rag.ParseStrategy(os.Getenv("CHAT_STRATEGY"), rag.StrategyGenerative),
		Prompt:       prompt,
		ModelTimeout: generateTimeout,
	}, s.llmProvider, s.log)

	var chatClassifier intent.Classifier = intent.NewChatKeywordClassifier()
	if s.llmProvider != nil {
		chatClassifier = intent.NewModelClassifier(s.llmProvider, classifyTimeout, s.log)
	}

	return assistantService.Pipelines{
		Voice: rag.NewPipeline(intent.NewKeywordClassifier(nil), s.store, voiceGenerator),
		Chat:  rag.NewPipeline(chatClassifier, s.store, chatGenerator),
	}
}

func (s *Server) newSessionStore(ttl time.Duration) assistantService.SessionStore {
	if s.redisServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.redisServer.Ping(ctx); err == nil {
			return assistantService.NewRedisSessionStore(s.redisServer, ttl)
		}
		s.log.Warn("Redis unreachable, keeping call sessions in memory")
	}
	return assistantService.NewMemorySessionStore(10_000, ttl)
}

func (s *Server) RegisterHandler() {
	cfg := assistantService.Config{
		PlatformName:  os.Getenv("PLATFORM_NAME"),
		FallbackPhone: os.Getenv("FALLBACK_PHONE_NUMBER"),
		MaxRetries:    envInt("VOICE_MAX_RETRIES", 2),
		GatherTimeout: envInt("VOICE_GATHER_TIMEOUT_SECONDS", 5),
		Voice:         os.Getenv("VOICE_NAME"),
		SessionTTL:    time.Duration(envInt("CALL_SESSION_TTL_MINUTES", 30)) * time.Minute,
		AnalyticsDays: envInt("ANALYTICS_DEFAULT_DAYS", 7),
	}

	var repo assistantRepository.Repository
	if s.db != nil {
		repo = assistantRepository.New(s.db, s.log)
	}

	// Assistant Domain
	s.assistant = assistantService.New(
		s.log,
		repo,
		s.store,
		s.newPipelines(),
		s.newSessionStore(cfg.SessionTTL),
		assistantService.NewHostNotifier(s.log, s.whatsappClient, s.dashboard),
		s.transcriber,
		s.s3Client,
		s.utils,
		cfg,
	)
	assistantHandlers := assistantHandler.New(s.log, s.validator, s.middleware, s.assistant)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, assistantHandlers)
}

// Assistant exposes the wired service for boot-time loading and the seed
// watcher.
func (s *Server) Assistant() assistantService.IAssistantService {
	return s.assistant
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())

	router := s.engine.Group("/api/v1")
	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.engine.ShutdownWithContext(ctx)

	s.middleware.Close()
	if s.dashboard != nil {
		s.dashboard.Close()
	}
	if s.whatsappClient != nil {
		if disconnectErr := s.whatsappClient.Disconnect(); disconnectErr != nil {
			s.log.Warnf("Failed to disconnect WhatsApp client: %v", disconnectErr)
		}
	}
	if s.redisServer != nil {
		if closeErr := s.redisServer.Close(); closeErr != nil {
			s.log.Warnf("Failed to close Redis client: %v", closeErr)
		}
	}
	if s.db != nil {
		if closeErr := s.db.Close(); closeErr != nil {
			s.log.Warnf("Failed to close database: %v", closeErr)
		}
	}
	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message":   "Server is Healthy!",
			"documents": s.store.Count(),
		})
	})
}
