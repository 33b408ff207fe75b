package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestGenerateToken_RoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userID := uuid.New()
	signed, err := generateToken(userID)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}

	secret, err := jwtSecretFromEnv()
	if err != nil {
		t.Fatalf("jwtSecretFromEnv: %v", err)
	}

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parse signed token: %v", err)
	}

	claims := token.Claims.(jwt.MapClaims)
	sub, err := claims.GetSubject()
	if err != nil {
		t.Fatalf("subject: %v", err)
	}
	if sub != userID.String() {
		t.Fatalf("subject = %s, want %s", sub, userID)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		t.Fatalf("expiration: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("token already expired: %v", exp)
	}
}

func TestMiddleware_PlacesActorID(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userID := uuid.New()
	signed, err := generateToken(userID)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	c := echo.New().NewContext(req, httptest.NewRecorder())

	handler := Middleware(func(c echo.Context) error {
		got, err := GetUserIDFromContext(c)
		if err != nil {
			t.Fatalf("GetUserIDFromContext: %v", err)
		}
		if got != userID {
			t.Fatalf("actor ID = %s, want %s", got, userID)
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware rejected valid token: %v", err)
	}
}

func TestMiddleware_RejectsMissingAndMalformedHeaders(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	for _, header := range []string{"", "Bearer ", "Basic abc", "garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		c := echo.New().NewContext(req, httptest.NewRecorder())

		handler := Middleware(func(echo.Context) error { return nil })
		err := handler(c)

		httpErr, ok := err.(*echo.HTTPError)
		if !ok || httpErr.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %v", header, err)
		}
	}
}
