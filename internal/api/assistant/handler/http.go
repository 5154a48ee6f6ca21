package assistantHandler

import (
	assistantService "ShortletAssistant/internal/api/assistant/service"
	"ShortletAssistant/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type AssistantHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	assistantService assistantService.IAssistantService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	as assistantService.IAssistantService,
) *AssistantHandler {
	return &AssistantHandler{
		log:              log,
		validator:        validate,
		middleware:       middleware,
		assistantService: as,
	}
}

func (h *AssistantHandler) Start(srv fiber.Router) {
	assistant := srv.Group("/assistant")

	// Guest facing endpoints are rate limited per client and route
	assistant.Post("/query", h.middleware.NewRateLimiter, h.Query)
	assistant.Post("/voice-note", h.middleware.NewRateLimiter, h.VoiceNote)
	assistant.Get("/ws", h.middleware.NewRateLimiter, h.upgradeWebSocket, websocket.New(h.handleChatSocket))

	// Telephony provider webhooks
	voice := assistant.Group("/voice")
	voice.Post("/incoming", h.IncomingCall)
	voice.Post("/gather", h.Gather)
	voice.Post("/status", h.CallStatus)

	assistant.Get("/analytics", h.middleware.NewTokenMiddleware, h.middleware.NewAdminMiddleware, h.GetAnalytics)

	knowledge := srv.Group("/knowledge", h.middleware.NewTokenMiddleware, h.middleware.NewAdminMiddleware)
	knowledge.Post("/import", h.ImportBundle)
	knowledge.Post("/export", h.ExportBundle)
	knowledge.Put("/:property_id", h.IndexKnowledge)
	knowledge.Get("/:property_id", h.ListKnowledge)
}
