package middleware

import (
	"ShortletAssistant/internal/entity"
	jwtPkg "ShortletAssistant/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const AccessTokenSecret = "JWT_ACCESS_TOKEN_SECRET"

type tokenMiddleware struct {
	secret string
}

func newTokenMiddleware(secret string) *tokenMiddleware {
	return &tokenMiddleware{secret: secret}
}

func (m *middleware) unauthorized(ctx *fiber.Ctx, reason string) error {
	m.log.WithFields(logrus.Fields{
		"request_id": m.GetRequestID(ctx),
		"path":       ctx.Path(),
		"client_ip":  ctx.IP(),
		"reason":     reason,
	}).Warn("Unauthorized request")

	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized, access token invalid or expired",
		"code":  "UNAUTHORIZED",
	})
}

// NewTokenMiddleware verifies the bearer token and stores the operator in
// ctx.Locals.
func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	if m.token.secret == "" {
		return m.unauthorized(ctx, "JWT secret not configured")
	}

	header := ctx.Get(fiber.HeaderAuthorization)
	if len(header) < 7 || header[:7] != "Bearer " {
		return m.unauthorized(ctx, "missing bearer token")
	}

	token, err := jwtPkg.Verify(header[7:], m.token.secret)
	if err != nil {
		return m.unauthorized(ctx, err.Error())
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return m.unauthorized(ctx, "invalid token claims")
	}

	operator, err := jwtPkg.OperatorFromClaims(claims)
	if err != nil {
		return m.unauthorized(ctx, err.Error())
	}

	ctx.Locals(jwtPkg.OperatorLocalsKey, operator)
	return ctx.Next()
}

// NewAdminMiddleware runs after NewTokenMiddleware and requires the admin role.
func (m *middleware) NewAdminMiddleware(ctx *fiber.Ctx) error {
	operator, err := jwtPkg.GetOperator(ctx)
	if err != nil {
		return m.unauthorized(ctx, err.Error())
	}
	if operator.Role != entity.RoleAdmin {
		m.log.WithFields(logrus.Fields{
			"request_id":  m.GetRequestID(ctx),
			"operator_id": operator.ID,
			"role":        operator.Role,
		}).Warn("Forbidden request")
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden",
			"code":  "FORBIDDEN",
		})
	}
	return ctx.Next()
}
