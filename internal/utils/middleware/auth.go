package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID.
	UserIDKey = "user_id"
	// EmailKey is the context key for email.
	EmailKey = "email"
	// IsAdminKey is the context key for the admin flag.
	IsAdminKey = "is_admin"
)

// Claims holds the identity resolved from an access token.
type Claims struct {
	UserID  uuid.UUID
	Email   string
	IsAdmin bool
}

// TokenVerifier defines the interface for access token validation.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*Claims, error)
}

// Auth returns a middleware that validates bearer tokens.
// If the token is valid, it sets user_id, email and is_admin in the context.
// If optional is true, the middleware will not abort on missing/invalid tokens.
func Auth(verifier TokenVerifier, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			if !optional {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": gin.H{
						"code":    "UNAUTHORIZED",
						"message": "Authorization header required",
					},
				})
			}
			c.Next()
			return
		}

		claims, err := verifier.VerifyAccessToken(token)
		if err != nil {
			if !optional {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": gin.H{
						"code":    "INVALID_TOKEN",
						"message": "Invalid or expired token",
					},
				})
			}
			c.Next()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Set(IsAdminKey, claims.IsAdmin)

		c.Next()
	}
}

// RequireAuth returns a middleware that requires a valid token.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return Auth(verifier, false)
}

// OptionalAuth returns a middleware that optionally validates tokens.
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return Auth(verifier, true)
}

// RequireAdmin returns a middleware that requires an authenticated admin.
// It must be registered after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "admin access required",
				},
			})
			return
		}
		c.Next()
	}
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		return ""
	}

	if strings.HasPrefix(authHeader, BearerPrefix) {
		return strings.TrimPrefix(authHeader, BearerPrefix)
	}

	return ""
}

// GetUserID returns the user ID from context.
// Returns uuid.Nil if not found.
func GetUserID(c *gin.Context) uuid.UUID {
	if val, exists := c.Get(UserIDKey); exists {
		if userID, ok := val.(uuid.UUID); ok {
			return userID
		}
	}
	return uuid.Nil
}

// GetEmail returns the email from context.
// Returns empty string if not found.
func GetEmail(c *gin.Context) string {
	if val, exists := c.Get(EmailKey); exists {
		if email, ok := val.(string); ok {
			return email
		}
	}
	return ""
}

// IsAdmin returns true if the authenticated user is an admin.
func IsAdmin(c *gin.Context) bool {
	if val, exists := c.Get(IsAdminKey); exists {
		if isAdmin, ok := val.(bool); ok {
			return isAdmin
		}
	}
	return false
}

// IsAuthenticated returns true if the user is authenticated.
func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != uuid.Nil
}
