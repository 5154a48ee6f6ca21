package assistantHandler

import (
	"time"

	"ShortletAssistant/internal/api/assistant"
	contextPkg "ShortletAssistant/pkg/context"
	"ShortletAssistant/pkg/handlerUtil"
	"ShortletAssistant/pkg/rag"
	"ShortletAssistant/pkg/voicexml"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (h *AssistantHandler) parseWebhook(ctx *fiber.Ctx) (assistant.VoiceWebhook, error) {
	var hook assistant.VoiceWebhook
	if err := ctx.BodyParser(&hook); err != nil {
		return hook, err
	}
	if err := ctx.QueryParser(&hook); err != nil {
		return hook, err
	}
	return hook, h.validator.Struct(hook)
}

func sendVoiceXML(ctx *fiber.Ctx, body []byte) error {
	ctx.Set(fiber.HeaderContentType, voicexml.ContentType)
	return ctx.Status(fiber.StatusOK).Send(body)
}

// voiceFailure keeps the caller informed when a webhook cannot be served. The
// provider would otherwise read a JSON error as an empty script.
func (h *AssistantHandler) voiceFailure(ctx *fiber.Ctx, requestID string, err error, operation string) error {
	h.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"operation":  operation,
		"error":      err.Error(),
	}).Error("Voice webhook failed")

	body, renderErr := voicexml.New("").Say(rag.ApologyText).Hangup().Render()
	if renderErr != nil {
		return handlerUtil.New(h.log).Handle(ctx, requestID, renderErr, ctx.Path(), operation)
	}
	return sendVoiceXML(ctx, body)
}

func (h *AssistantHandler) IncomingCall(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	hook, err := h.parseWebhook(ctx)
	if err != nil {
		return handlerUtil.New(h.log).HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	h.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"call_id":     hook.CallSid,
		"property_id": hook.PropertyID,
	}).Info("Incoming call")

	body, err := h.assistantService.IncomingCall(c, hook)
	if err != nil {
		return h.voiceFailure(ctx, requestID, err, "voice_incoming")
	}
	return sendVoiceXML(ctx, body)
}

func (h *AssistantHandler) Gather(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 12*time.Second)
	defer cancel()

	hook, err := h.parseWebhook(ctx)
	if err != nil {
		return handlerUtil.New(h.log).HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	body, err := h.assistantService.Gather(c, hook)
	if err != nil {
		return h.voiceFailure(ctx, requestID, err, "voice_gather")
	}
	return sendVoiceXML(ctx, body)
}

func (h *AssistantHandler) CallStatus(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	hook, err := h.parseWebhook(ctx)
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.assistantService.CallStatus(c, hook); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "voice_status")
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
