package middleware

import (
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Middleware interface {
	NewRateLimiter(ctx *fiber.Ctx) error
	NewTokenMiddleware(ctx *fiber.Ctx) error
	NewAdminMiddleware(ctx *fiber.Ctx) error
	NewRequestIDMiddleware() fiber.Handler
	NewLoggingMiddleware() fiber.Handler
	GetRequestID(ctx *fiber.Ctx) string
	Close()
}

type middleware struct {
	token               *tokenMiddleware
	rateLimitter        *rateLimiter
	requestIDMiddleware fiber.Handler
	log                 *logrus.Logger
}

// New reads RATE_LIMIT_RPS and RATE_LIMIT_BURST, defaulting to 5 and 20.
func New(logger *logrus.Logger) Middleware {
	rps := envFloat("RATE_LIMIT_RPS", 5)
	burst := int(envFloat("RATE_LIMIT_BURST", 20))

	return &middleware{
		token:               newTokenMiddleware(os.Getenv(AccessTokenSecret)),
		rateLimitter:        newRateLimiter(rate.Limit(rps), burst, defaultLimiterCapacity),
		requestIDMiddleware: NewRequestIDMiddleware(),
		log:                 logger,
	}
}

func (m *middleware) GetRequestID(ctx *fiber.Ctx) string {
	requestID, ok := ctx.Locals(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func (m *middleware) NewRequestIDMiddleware() fiber.Handler {
	return m.requestIDMiddleware
}

func (m *middleware) Close() {
	m.rateLimitter.close()
}

func envFloat(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
