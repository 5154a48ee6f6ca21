package jwtPkg

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"ShortletAssistant/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const OperatorLocalsKey = "operator"

var (
	ErrMissingHeader = errors.New("empty Authorization header")
	ErrInvalidFormat = errors.New("invalid Authorization format")
	ErrSecretNotSet  = errors.New("JWT secret not configured")
	ErrMissingClaims = errors.New("token claims are missing required fields")
	ErrNotAnOperator = errors.New("operator not found in context")
)

// Sign issues an HS256 token for the given claims using the secret stored in
// secretEnvKey. Used by kbctl to mint admin tokens.
func Sign(secretEnvKey string, data map[string]interface{}, expiresIn time.Duration) (string, int64, error) {
	secret := os.Getenv(secretEnvKey)
	if secret == "" {
		return "", 0, fmt.Errorf("%s: %w", secretEnvKey, ErrSecretNotSet)
	}

	expiresAt := time.Now().Add(expiresIn).Unix()
	claims := jwt.MapClaims{"exp": expiresAt}
	for k, v := range data {
		claims[k] = v
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", 0, err
	}
	return token, expiresAt, nil
}

func VerifyTokenHeader(c *fiber.Ctx, secretEnvKey string) (*jwt.Token, error) {
	header := c.Get("Authorization")
	if header == "" {
		return nil, ErrMissingHeader
	}

	accessToken, ok := strings.CutPrefix(header, "Bearer ")
	accessToken = strings.TrimSpace(accessToken)
	if !ok || accessToken == "" {
		return nil, ErrInvalidFormat
	}

	return Verify(accessToken, os.Getenv(secretEnvKey))
}

func Verify(accessToken, secret string) (*jwt.Token, error) {
	if secret == "" {
		return nil, ErrSecretNotSet
	}

	return jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
}

// OperatorFromClaims reads sub, email and role.
func OperatorFromClaims(claims jwt.MapClaims) (entity.Operator, error) {
	id, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if id == "" || role == "" {
		return entity.Operator{}, ErrMissingClaims
	}
	return entity.Operator{ID: id, Email: email, Role: role}, nil
}

func GetOperator(c *fiber.Ctx) (entity.Operator, error) {
	operator, ok := c.Locals(OperatorLocalsKey).(entity.Operator)
	if !ok {
		return entity.Operator{}, ErrNotAnOperator
	}
	return operator, nil
}
