package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinrao/auction-arena/internal/api/middleware"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyToken(t *testing.T) {
	identity := uuid.New()

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub":  identity.String(),
			"name": "ashwin",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})

		gotID, gotName, err := middleware.VerifyToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, identity, gotID)
		assert.Equal(t, "ashwin", gotName)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, "other-secret", jwt.MapClaims{
			"sub": identity.String(),
		})

		_, _, err := middleware.VerifyToken(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": identity.String(),
			"exp": time.Now().Add(-time.Hour).Unix(),
		})

		_, _, err := middleware.VerifyToken(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("missing sub claim", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"name": "ashwin",
		})

		_, _, err := middleware.VerifyToken(token, testSecret)
		assert.ErrorContains(t, err, "sub")
	})

	t.Run("non-uuid sub claim", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": "42",
		})

		_, _, err := middleware.VerifyToken(token, testSecret)
		assert.Error(t, err)
	})
}

func TestAuthMiddleware(t *testing.T) {
	identity := uuid.New()
	handler := middleware.Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, ok := middleware.GetIdentity(r.Context())
		require.True(t, ok)
		assert.Equal(t, identity, gotID)
		assert.Equal(t, "ashwin", middleware.GetDisplayName(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}))

	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub":  identity.String(),
		"name": "ashwin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "valid bearer token", authHeader: "Bearer " + token, wantStatus: http.StatusNoContent},
		{name: "missing header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "not a bearer scheme", authHeader: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "garbage token", authHeader: "Bearer garbage", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
