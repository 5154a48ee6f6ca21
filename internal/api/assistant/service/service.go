package assistantService

import (
	"context"
	"mime/multipart"
	"sync"
	"time"

	"ShortletAssistant/internal/api/assistant"
	assistantRepository "ShortletAssistant/internal/api/assistant/repository"
	"ShortletAssistant/internal/entity"
	"ShortletAssistant/pkg/audio"
	"ShortletAssistant/pkg/knowledge"
	"ShortletAssistant/pkg/rag"
	"ShortletAssistant/pkg/s3"
	"ShortletAssistant/pkg/utils"

	"github.com/sirupsen/logrus"
)

type IAssistantService interface {
	Query(ctx context.Context, channel entity.Channel, req assistant.QueryRequest) (*assistant.QueryResponse, error)
	VoiceNote(ctx context.Context, file *multipart.FileHeader, req assistant.QueryRequest) (*assistant.VoiceNoteResponse, error)

	IncomingCall(ctx context.Context, hook assistant.VoiceWebhook) ([]byte, error)
	Gather(ctx context.Context, hook assistant.VoiceWebhook) ([]byte, error)
	CallStatus(ctx context.Context, hook assistant.VoiceWebhook) error

	IndexKnowledge(ctx context.Context, propertyID string, req assistant.IndexKnowledgeRequest) (*assistant.IndexKnowledgeResponse, error)
	ListKnowledge(ctx context.Context, propertyID string) (*assistant.KnowledgeListResponse, error)
	ImportBundle(ctx context.Context, key string) (*assistant.BundleResponse, error)
	ExportBundle(ctx context.Context, key string) (*assistant.BundleResponse, error)
	LoadKnowledge(ctx context.Context) (int, error)

	GetAnalytics(ctx context.Context, days int) (*entity.AssistantReport, error)

	ApplyBundle(ctx context.Context, source string, bundle *knowledge.Bundle) error
	RemoveProperties(ctx context.Context, source string, propertyIDs []string) error
}

// Config holds the channel policy knobs read from the environment at boot.
type Config struct {
	PlatformName  string
	FallbackPhone string
	MaxRetries    int
	GatherTimeout int
	Voice         string
	GatherPath    string
	SessionTTL    time.Duration
	MaxAudioBytes int64
	AnalyticsDays int
	RecordTimeout time.Duration
	NotifyTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.PlatformName == "" {
		c.PlatformName = rag.DefaultPlatformName
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 2
	}
	if c.GatherTimeout <= 0 {
		c.GatherTimeout = 5
	}
	if c.GatherPath == "" {
		c.GatherPath = "/api/v1/assistant/voice/gather"
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 30 * time.Minute
	}
	if c.MaxAudioBytes <= 0 {
		c.MaxAudioBytes = 25 << 20
	}
	if c.AnalyticsDays <= 0 {
		c.AnalyticsDays = 7
	}
	if c.RecordTimeout <= 0 {
		c.RecordTimeout = 3 * time.Second
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = 10 * time.Second
	}
	return c
}

type Pipelines struct {
	Chat  *rag.Pipeline
	Voice *rag.Pipeline
}

type assistantService struct {
	log         *logrus.Logger
	repo        assistantRepository.Repository
	store       knowledge.IStore
	pipelines   Pipelines
	sessions    SessionStore
	notifier    Notifier
	transcriber audio.ITranscriber
	s3Client    s3.ItfS3
	utils       utils.IUtils
	config      Config

	writeMu    sync.Mutex
	profilesMu sync.RWMutex
	profiles   map[string]entity.Property
}

func New(
	log *logrus.Logger,
	repo assistantRepository.Repository,
	store knowledge.IStore,
	pipelines Pipelines,
	sessions SessionStore,
	notifier Notifier,
	transcriber audio.ITranscriber,
	s3Client s3.ItfS3,
	utils utils.IUtils,
	config Config,
) IAssistantService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &assistantService{
		log:         log,
		repo:        repo,
		store:       store,
		pipelines:   pipelines,
		sessions:    sessions,
		notifier:    notifier,
		transcriber: transcriber,
		s3Client:    s3Client,
		utils:       utils,
		config:      config.withDefaults(),
		profiles:    make(map[string]entity.Property),
	}
}
