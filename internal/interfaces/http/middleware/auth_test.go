package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/ledger/internal/infrastructure/auth"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "middleware-test-secret-32-chars!"

func identityRouter(cfg AuthConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Auth(cfg))
	handler := func(c *gin.Context) {
		tenantID, ok := GetTenantID(c)
		c.JSON(http.StatusOK, gin.H{
			"tenant":     tenantID.String(),
			"has_tenant": ok,
			"user":       c.GetString(UserIDKey),
			"ctx_tenant": logger.GetTenantID(c.Request.Context()),
		})
	}
	router.GET("/test", handler)
	router.GET("/health", handler)
	return router
}

func signToken(t *testing.T, tenantID string, expiresIn time.Duration) string {
	t.Helper()
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ledger-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
		TenantID: tenantID,
		UserID:   "user-1",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func TestAuth_HeaderMode(t *testing.T) {
	defaultTenant := uuid.New()
	router := identityRouter(AuthConfig{DefaultTenant: defaultTenant})

	t.Run("uses X-Tenant-ID", func(t *testing.T) {
		tenantID := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(TenantHeader, tenantID.String())
		req.Header.Set(UserHeader, "clerk")

		w := serve(router, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"tenant":"`+tenantID.String())
		assert.Contains(t, w.Body.String(), `"ctx_tenant":"`+tenantID.String())
		assert.Contains(t, w.Body.String(), `"user":"clerk"`)
	})

	t.Run("falls back to the default tenant", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), defaultTenant.String())
	})

	t.Run("rejects a malformed tenant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(TenantHeader, "tenant-one")

		w := serve(router, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_INVALID_ID")
	})
}

func TestAuth_NoTenantAvailable(t *testing.T) {
	w := serve(identityRouter(AuthConfig{}), httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_TENANT_MISSING")
}

func TestAuth_JWTMode(t *testing.T) {
	svc := auth.NewJWTService(config.JWTConfig{Enabled: true, Secret: testJWTSecret, Issuer: "ledger-test"})
	router := identityRouter(AuthConfig{JWTService: svc, SkipPaths: []string{"/health"}})
	tenantID := uuid.New()

	t.Run("valid token sets tenant and user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(AuthHeaderKey, "Bearer "+signToken(t, tenantID.String(), time.Hour))
		// the header is ignored once a token is required
		req.Header.Set(TenantHeader, uuid.New().String())

		w := serve(router, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"tenant":"`+tenantID.String())
		assert.Contains(t, w.Body.String(), `"user":"user-1"`)
	})

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing token", "", "ERR_UNAUTHORIZED"},
		{"expired token", "Bearer " + signToken(t, tenantID.String(), -time.Minute), "ERR_TOKEN_EXPIRED"},
		{"garbage token", "Bearer abc.def", "ERR_TOKEN_INVALID"},
		{"token without tenant", "Bearer " + signToken(t, "", time.Hour), "ERR_TENANT_MISSING"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := serve(router, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
		})
	}

	t.Run("skip paths need no token", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"has_tenant":false`)
	})
}

func TestGetUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetUserID(c))

	id := uuid.New()
	c.Set(UserIDKey, id.String())
	require.NotNil(t, GetUserID(c))
	assert.Equal(t, id, *GetUserID(c))
}
