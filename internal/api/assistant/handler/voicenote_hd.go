package assistantHandler

import (
	"errors"
	"time"

	"ShortletAssistant/internal/api/assistant"
	contextPkg "ShortletAssistant/pkg/context"
	"ShortletAssistant/pkg/handlerUtil"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *AssistantHandler) VoiceNote(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	audioFile, err := ctx.FormFile("audio")
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("audio file is required"), ctx.Path())
	}

	req := assistant.QueryRequest{
		PropertyID: ctx.FormValue("property_id"),
		// placeholder until the transcript replaces it
		Utterance: "voice note",
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.assistantService.VoiceNote(c, audioFile, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "assistant_voice_note")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}
