package middleware

import (
	"strings"
	"time"

	"ShortletAssistant/pkg/log"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

const maxLoggedBody = 2048

var sensitiveFields = []string{
	"password", "token", "secret", "key", "auth", "authorization", "credential",
	"phone", "host_phone", "email",
}

func (m *middleware) NewLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		fields := log.Fields{
			"request_id":    m.GetRequestID(c),
			"method":        c.Method(),
			"path":          c.Path(),
			"status":        status,
			"latency_ms":    time.Since(start).Milliseconds(),
			"ip":            c.IP(),
			"user_agent":    c.Get(fiber.HeaderUserAgent),
			"response_size": len(c.Response().Body()),
		}

		if body := c.Request().Body(); len(body) > 0 && strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
			fields["request_body"] = sanitizeRequestBody(body)
		}

		switch {
		case status >= 500:
			log.Error(fields, "Server error")
		case status >= 400:
			log.Warn(fields, "Client error")
		default:
			log.Info(fields, "Success")
		}

		return err
	}
}

func sanitizeRequestBody(body []byte) string {
	var jsonBody map[string]interface{}
	if err := jsoniter.Unmarshal(body, &jsonBody); err != nil {
		return "[non-JSON body]"
	}

	for _, field := range sensitiveFields {
		if _, exists := jsonBody[field]; exists {
			jsonBody[field] = "[SECRET]"
		}
	}

	sanitized, err := jsoniter.Marshal(jsonBody)
	if err != nil {
		return "[sanitization-failed]"
	}
	if len(sanitized) > maxLoggedBody {
		return string(sanitized[:maxLoggedBody]) + "...[truncated]"
	}
	return string(sanitized)
}
