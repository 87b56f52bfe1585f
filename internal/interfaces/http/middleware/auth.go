package middleware

import (
	"errors"
	"net/http"
	"slices"

	"github.com/erp/ledger/internal/infrastructure/auth"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys and headers for the caller identity
const (
	TenantIDKey   = "tenant_id"
	UserIDKey     = "user_id"
	ClaimsKey     = "jwt_claims"
	TenantHeader  = "X-Tenant-ID"
	UserHeader    = "X-User-ID"
	AuthHeaderKey = "Authorization"
)

// AuthConfig configures caller identification.
//
// With a JWTService every request outside SkipPaths must carry a valid bearer
// token and the tenant comes from its claims. Without one the tenant is read
// from X-Tenant-ID, falling back to DefaultTenant.
type AuthConfig struct {
	JWTService    *auth.JWTService
	DefaultTenant uuid.UUID
	SkipPaths     []string
	Logger        *zap.Logger
}

// Auth resolves the tenant and user of each request
func Auth(cfg AuthConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		var tenantID uuid.UUID
		var userID string

		if cfg.JWTService != nil {
			claims, err := authenticate(c, cfg.JWTService)
			if err != nil {
				cfg.Logger.Warn("jwt authentication failed",
					zap.Error(err),
					zap.String("path", c.Request.URL.Path),
				)
				abortUnauthorized(c, err)
				return
			}
			tenantID, _ = claims.GetTenantUUID()
			userID = claims.UserID
			c.Set(ClaimsKey, claims)
		} else {
			header := c.GetHeader(TenantHeader)
			switch {
			case header != "":
				parsed, err := uuid.Parse(header)
				if err != nil {
					c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
						dto.ErrCodeInvalidID, "Invalid tenant ID format", GetRequestID(c)))
					return
				}
				tenantID = parsed
			case cfg.DefaultTenant != uuid.Nil:
				tenantID = cfg.DefaultTenant
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeTenantMissing, "Tenant context is required", GetRequestID(c)))
				return
			}
			userID = c.GetHeader(UserHeader)
		}

		c.Set(TenantIDKey, tenantID)
		ctx := logger.WithTenantID(c.Request.Context(), tenantID.String())
		if userID != "" {
			c.Set(UserIDKey, userID)
			ctx = logger.WithUserID(ctx, userID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func authenticate(c *gin.Context, svc *auth.JWTService) (*auth.Claims, error) {
	token, err := auth.ExtractBearerToken(c.GetHeader(AuthHeaderKey))
	if err != nil {
		return nil, err
	}
	return svc.ValidateToken(token)
}

func abortUnauthorized(c *gin.Context, err error) {
	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrMissingToken):
		message = "Missing bearer token"
	case errors.Is(err, auth.ErrMissingTenantID):
		code, message = dto.ErrCodeTenantMissing, "Token carries no tenant"
	default:
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetTenantID returns the tenant resolved by Auth
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// GetUserID returns the caller's user id when it is a UUID
func GetUserID(c *gin.Context) *uuid.UUID {
	id, err := uuid.Parse(c.GetString(UserIDKey))
	if err != nil {
		return nil
	}
	return &id
}

// GetClaims returns the validated token claims, or nil without JWT auth
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
