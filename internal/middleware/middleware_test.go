package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwtPkg "ShortletAssistant/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func testMiddleware(secret string, rps rate.Limit, burst int) *middleware {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &middleware{
		token:               newTokenMiddleware(secret),
		rateLimitter:        newRateLimiter(rps, burst, 100),
		requestIDMiddleware: NewRequestIDMiddleware(),
		log:                 logger,
	}
}

func TestRateLimiterIsPerRoute(t *testing.T) {
	m := testMiddleware("", rate.Every(time.Hour), 1)
	defer m.Close()

	app := fiber.New()
	app.Get("/a", m.NewRateLimiter, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/b", m.NewRateLimiter, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	codes := func(path string) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp.StatusCode
	}

	if got := codes("/a"); got != fiber.StatusOK {
		t.Fatalf("first /a: %d", got)
	}
	if got := codes("/a"); got != fiber.StatusTooManyRequests {
		t.Fatalf("second /a should be limited, got %d", got)
	}
	if got := codes("/b"); got != fiber.StatusOK {
		t.Fatalf("/b has its own bucket, got %d", got)
	}
}

func TestRequestIDIsGeneratedAndEchoed(t *testing.T) {
	m := testMiddleware("", rate.Inf, 1)
	defer m.Close()

	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(m.GetRequestID(c)) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 26 || resp.Header.Get(RequestIDKey) != string(body) {
		t.Fatalf("expected a ULID echoed in the header, got %q / %q", body, resp.Header.Get(RequestIDKey))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDKey, "abc")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Header.Get(RequestIDKey) != "abc" {
		t.Fatalf("incoming request id should be kept, got %q", resp.Header.Get(RequestIDKey))
	}
}

func adminApp(m *middleware) *fiber.App {
	app := fiber.New()
	app.Get("/admin", m.NewTokenMiddleware, m.NewAdminMiddleware, func(c *fiber.Ctx) error {
		operator, err := jwtPkg.GetOperator(c)
		if err != nil {
			return err
		}
		return c.SendString(operator.ID)
	})
	return app
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	t.Setenv("TEST_ADMIN_SECRET", "s3cret")
	token, _, err := jwtPkg.Sign("TEST_ADMIN_SECRET", map[string]interface{}{"sub": "op-7", "role": role}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestAdminMiddleware(t *testing.T) {
	m := testMiddleware("s3cret", rate.Inf, 1)
	defer m.Close()
	app := adminApp(m)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"not bearer", "Basic abc", fiber.StatusUnauthorized},
		{"garbage token", "Bearer abc", fiber.StatusUnauthorized},
		{"guest role", "Bearer " + tokenFor(t, "guest"), fiber.StatusForbidden},
		{"admin role", "Bearer " + tokenFor(t, "admin"), fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestSanitizeRequestBody(t *testing.T) {
	out := sanitizeRequestBody([]byte(`{"utterance":"hi","token":"abc"}`))
	if strings.Contains(out, "abc") || !strings.Contains(out, "[SECRET]") {
		t.Fatalf("token not masked: %s", out)
	}
	if got := sanitizeRequestBody([]byte("CallSid=1")); got != "[non-JSON body]" {
		t.Fatalf("unexpected form body rendering: %s", got)
	}
}
