package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"ShortletAssistant/pkg/handlerUtil"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// NewFiber builds the HTTP app. Uploads are capped by MAX_BODY_MB (default 30)
// so a voice note at the transcription limit still fits.
func NewFiber(logger *logrus.Logger) *fiber.App {
	bodyLimitMB, err := strconv.Atoi(os.Getenv("MAX_BODY_MB"))
	if err != nil || bodyLimitMB <= 0 {
		bodyLimitMB = 30
	}

	return fiber.New(fiber.Config{
		AppName:      "Shortlet Assistant",
		BodyLimit:    bodyLimitMB * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
		// Routes are mounted as written; a trailing slash is a different path.
		StrictRouting:         true,
		CaseSensitive:         true,
		DisableStartupMessage: os.Getenv("APP_ENV") == "production",
		JSONEncoder:           jsoniter.Marshal,
		JSONDecoder:           jsoniter.Unmarshal,
		ErrorHandler:          errorHandler(logger),
	})
}

// errorHandler renders errors that escape a handler, such as unknown routes,
// in the same shape as handlerUtil responses.
func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(handlerUtil.ErrorResponse{Error: fiberErr.Message})
		}

		requestID, _ := c.Locals("X-Request-ID").(string)
		return handlerUtil.New(logger).Handle(c, requestID, err, c.Path(), "unhandled")
	}
}
