package assistantHandler

import (
	"time"

	"ShortletAssistant/internal/api/assistant"
	contextPkg "ShortletAssistant/pkg/context"
	"ShortletAssistant/pkg/handlerUtil"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *AssistantHandler) GetAnalytics(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req assistant.AnalyticsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.assistantService.GetAnalytics(c, req.Days)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "assistant_analytics")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}
