package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gorider/gorider-api/internal/domain/user"
	"github.com/gorider/gorider-api/pkg/auth"
	"github.com/gorider/gorider-api/pkg/logger"
)

const (
	// RequestIDHeader carries the per-request correlation id
	RequestIDHeader = "X-Request-ID"

	// ContextEmail is the gin context key holding the authenticated email
	ContextEmail = "email"
	// ContextUser is set by RequireAdmin to the loaded account
	ContextUser = "user"

	// IssuerKeyHeader carries the credential of the sign-in frontend
	IssuerKeyHeader = "X-Issuer-Key"
)

// RequestID propagates an incoming X-Request-ID or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// CORS allows the configured origins
func CORS(origins, methods, headers []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  methods,
		AllowHeaders:  headers,
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			unauthorized(c)
			return
		}

		claims, err := tokens.Validate(raw)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// RequireIssuerKey admits only the sign-in frontend, which verifies the
// identity provider session before asking for a token and is the sole
// holder of key. With an empty key every request is refused.
func RequireIssuerKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(IssuerKeyHeader)
		if key == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			unauthorized(c)
			return
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth. It loads the caller's account
// and rejects anyone without the admin role.
func RequireAdmin(users user.Repository, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(ContextEmail)
		if email == "" {
			unauthorized(c)
			return
		}

		u, err := users.GetByEmail(c.Request.Context(), email)
		if errors.Is(err, user.ErrUserNotFound) {
			forbidden(c)
			return
		}
		if err != nil {
			log.Error("Failed to load user for admin check", logger.String("email", email), logger.Err(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		if !u.IsAdmin() {
			forbidden(c)
			return
		}

		c.Set(ContextUser, u)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": true, "message": "unauthorized access"})
}

func forbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": true, "message": "forbidden message"})
}
