package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"freelance-backend/internal/config"
	"freelance-backend/internal/models"
	"freelance-backend/internal/services"
)

const (
	UserIDKey   = "user_id"
	IdentityKey = "identity"
)

// IdentityResolver maps a verified token subject to a marketplace identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, accessToken string) (*services.Identity, error)
}

func unauthorized(c *gin.Context, msg, detail string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: msg, Message: detail})
}

// AuthMiddleware verifies the Supabase HS256 access token and stores the
// caller's user id and identity in the gin context.
func AuthMiddleware(cfg *config.Config, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing authorization header", "")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "invalid authorization header format", "")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			unauthorized(c, "empty token", "")
			return
		}

		// Some clients URL-encode the token
		if decoded, err := url.QueryUnescape(tokenString); err == nil {
			tokenString = decoded
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if cfg.SupabaseJWTSecret == "" {
				return nil, jwt.ErrSignatureInvalid
			}
			// Supabase JWT secret is used directly as the signing key
			return []byte(cfg.SupabaseJWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			unauthorized(c, "invalid token", tokenErrorMessage(err))
			return
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			unauthorized(c, "missing user id in token", "")
			return
		}
		userID, err := uuid.Parse(sub)
		if err != nil {
			unauthorized(c, "invalid user id in token", "")
			return
		}

		identity, err := resolver.Resolve(c.Request.Context(), userID, tokenString)
		if err != nil {
			var se *services.Error
			if errors.As(err, &se) {
				c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
					Error:   "access denied",
					Message: se.Message,
					Code:    string(se.Kind),
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to resolve user",
				Message: err.Error(),
			})
			return
		}

		c.Set(UserIDKey, sub)
		c.Set(IdentityKey, *identity)
		c.Next()
	}
}

func tokenErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "token signature is invalid - check JWT secret"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed - ensure you're using a valid Supabase JWT token"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "token must use HS256 algorithm"
	default:
		return err.Error()
	}
}

// CurrentIdentity returns the identity stored by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (services.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return services.Identity{}, false
	}
	identity, ok := v.(services.Identity)
	return identity, ok
}
