package assistantHandler

import (
	"ShortletAssistant/internal/api/assistant"
	"ShortletAssistant/internal/entity"
	contextPkg "ShortletAssistant/pkg/context"
	"ShortletAssistant/pkg/handlerUtil"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (h *AssistantHandler) Query(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), assistant.QueryTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req assistant.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		h.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to parse assistant query")
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.assistantService.Query(c, entity.ChannelChat, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "assistant_query")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}
