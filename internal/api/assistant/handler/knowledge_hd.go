package assistantHandler

import (
	"errors"
	"strings"
	"time"

	"ShortletAssistant/internal/api/assistant"
	contextPkg "ShortletAssistant/pkg/context"
	"ShortletAssistant/pkg/handlerUtil"
	jwtPkg "ShortletAssistant/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

var errMissingPropertyID = errors.New("property_id is required")

func propertyParam(ctx *fiber.Ctx) (string, error) {
	propertyID := strings.TrimSpace(ctx.Params("property_id"))
	if propertyID == "" || len(propertyID) > 64 {
		return "", errMissingPropertyID
	}
	return propertyID, nil
}

func (h *AssistantHandler) IndexKnowledge(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 15*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	propertyID, err := propertyParam(ctx)
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	var req assistant.IndexKnowledgeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if operator, err := jwtPkg.GetOperator(ctx); err == nil {
		h.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"operator":    operator.Email,
			"property_id": propertyID,
			"documents":   len(req.Documents),
		}).Info("Knowledge re-index requested")
	}

	res, err := h.assistantService.IndexKnowledge(c, propertyID, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "index_knowledge")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *AssistantHandler) ListKnowledge(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	propertyID, err := propertyParam(ctx)
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.assistantService.ListKnowledge(c, propertyID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_knowledge")
	}
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
}

func (h *AssistantHandler) parseBundleRequest(ctx *fiber.Ctx) (assistant.BundleRequest, error) {
	var req assistant.BundleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return req, err
	}
	return req, h.validator.Struct(req)
}

func (h *AssistantHandler) ImportBundle(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	req, err := h.parseBundleRequest(ctx)
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.assistantService.ImportBundle(c, req.Key)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "import_bundle")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *AssistantHandler) ExportBundle(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	req, err := h.parseBundleRequest(ctx)
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.assistantService.ExportBundle(c, req.Key)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "export_bundle")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, res)
	}
}
