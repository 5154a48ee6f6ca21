package handlerUtil

import (
	"context"
	"errors"

	"ShortletAssistant/pkg/log"
	"ShortletAssistant/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Handle maps a domain error to its HTTP response. Unknown errors become a
// 500 carrying a trace id.
func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields["code"] = respErr.Code
		if respErr.Code >= fiber.StatusInternalServerError {
			h.logger.WithFields(fields).Error("Operation failed")
		} else {
			h.logger.WithFields(fields).Warn("Operation failed with error response")
		}
		return c.Status(respErr.Code).JSON(ErrorResponse{
			Error: err.Error(),
			Code:  respErr.Slug,
		})
	}

	if errors.Is(err, fiber.ErrRequestTimeout) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return h.HandleRequestTimeout(c)
	}

	traceID := log.ErrorWithTraceID(fields, "Unexpected error")
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "An unexpected error occurred",
		TraceID: traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(ErrorResponse{
		Error: utils.StatusMessage(fiber.StatusRequestTimeout),
		Code:  "REQUEST_TIMEOUT",
	})
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
