package middleware

import (
	"net/http"
	"time"

	"ShortletAssistant/pkg/response"
	"ShortletAssistant/pkg/ttlcache"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const (
	defaultLimiterCapacity = 10_000
	limiterIdleTTL         = 10 * time.Minute
)

var ErrTooManyRequests = response.NewError(http.StatusTooManyRequests, "too many requests")

// rateLimiter keeps one token bucket per client and route. Idle buckets expire
// so the table stays bounded.
type rateLimiter struct {
	buckets   *ttlcache.Cache[string, *rate.Limiter]
	rate      rate.Limit
	burstSize int
}

func newRateLimiter(reqRate rate.Limit, burstSize, capacity int) *rateLimiter {
	buckets := ttlcache.New[string, *rate.Limiter](capacity, limiterIdleTTL)
	buckets.StartSweeper(time.Minute)

	return &rateLimiter{
		buckets:   buckets,
		rate:      reqRate,
		burstSize: burstSize,
	}
}

func limiterKey(ip, route string) string {
	return ip + "|" + route
}

func (r *rateLimiter) limiterFor(ip, route string) *rate.Limiter {
	key := limiterKey(ip, route)
	limiter := r.buckets.GetOrSet(key, func() *rate.Limiter {
		return rate.NewLimiter(r.rate, r.burstSize)
	})
	r.buckets.Set(key, limiter)
	return limiter
}

func (r *rateLimiter) close() {
	r.buckets.Close()
}

func (m *middleware) NewRateLimiter(ctx *fiber.Ctx) error {
	clientIP := ctx.IP()
	route := ctx.Route().Path
	if route == "" {
		route = ctx.Path()
	}

	if !m.rateLimitter.limiterFor(clientIP, route).Allow() {
		m.log.WithFields(map[string]interface{}{
			"ip":         clientIP,
			"route":      route,
			"request_id": m.GetRequestID(ctx),
		}).Warn("Too many requests")
		return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": ErrTooManyRequests.Error(),
			"code":  "TOO_MANY_REQUESTS",
		})
	}

	return ctx.Next()
}
