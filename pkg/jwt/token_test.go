package jwtPkg

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndVerify(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "s3cret")

	token, exp, err := Sign("TEST_JWT_SECRET", map[string]interface{}{"sub": "op-1", "role": "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if exp <= time.Now().Unix() {
		t.Fatalf("expiry %d is in the past", exp)
	}

	parsed, err := Verify(token, "s3cret")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	operator, err := OperatorFromClaims(parsed.Claims.(jwt.MapClaims))
	if err != nil {
		t.Fatalf("OperatorFromClaims: %v", err)
	}
	if operator.ID != "op-1" || operator.Role != "admin" {
		t.Fatalf("unexpected operator: %+v", operator)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "s3cret")
	token, _, err := Sign("TEST_JWT_SECRET", map[string]interface{}{"sub": "op-1", "role": "admin"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(token, "other"); err == nil {
		t.Fatal("expected signature failure")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "s3cret")
	token, _, err := Sign("TEST_JWT_SECRET", map[string]interface{}{"sub": "op-1", "role": "admin"}, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(token, "s3cret"); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestSignWithoutSecret(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "")
	if _, _, err := Sign("TEST_JWT_SECRET", nil, time.Hour); !errors.Is(err, ErrSecretNotSet) {
		t.Fatalf("expected ErrSecretNotSet, got %v", err)
	}
}

func TestOperatorFromClaimsRequiresRole(t *testing.T) {
	if _, err := OperatorFromClaims(jwt.MapClaims{"sub": "op-1"}); !errors.Is(err, ErrMissingClaims) {
		t.Fatalf("expected ErrMissingClaims, got %v", err)
	}
}
