package middleware

import (
	"time"

	"ShortletAssistant/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

const RequestIDKey = "X-Request-ID"

func NewRequestIDMiddleware() fiber.Handler {
	utilsInstance := utils.New()

	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDKey)
		if requestID == "" || len(requestID) > 64 {
			requestID, _ = utilsInstance.NewULIDFromTimestamp(time.Now())
		}

		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)

		return c.Next()
	}
}
