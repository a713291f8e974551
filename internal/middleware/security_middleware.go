package middleware

import (
	"net/http"
	"strings"

	"ev-dealer-hub/internal/access"
	"ev-dealer-hub/internal/auth"
	"ev-dealer-hub/internal/dealership"
	"ev-dealer-hub/internal/models"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// AuthMiddleware checks if the user has a valid JWT token and is still active
func AuthMiddleware(issuer *auth.Issuer, reg *dealership.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get the token from the "Authorization" header
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		// 2. Remove the "Bearer " prefix
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer"})
			return
		}

		// 3. Validate the token using our auth package
		claims, err := issuer.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 4. A deactivated or deleted account loses access at once
		user, err := reg.Users.Get(claims.UserID)
		if err != nil || user.Status != models.StatusActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account is disabled"})
			return
		}

		// 5. Store the session in the context for the next handler (or AI Agent) to use
		c.Set(sessionKey, dealership.Session{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
			DealerID: user.DealerID,
		})
		c.Next()
	}
}

// CurrentSession returns the session AuthMiddleware stored on the request.
func CurrentSession(c *gin.Context) dealership.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(dealership.Session); ok {
			return s
		}
	}
	return dealership.Session{}
}

// SetSession stores s on the request, for tests and internal callers.
func SetSession(c *gin.Context, s dealership.Session) {
	c.Set(sessionKey, s)
}

// RequireRole is a secondary guard that checks for specific roles
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentSession(c).Role
		for _, r := range allowed {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
	}
}

// RequireAccess lets the request through when the caller's role holds at
// least level on res. Reads need Read, everything else needs Write.
func RequireAccess(res access.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		level := access.Write
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			level = access.Read
		}
		if !access.Can(CurrentSession(c).Role, res, level) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			return
		}
		c.Next()
	}
}

// Maintenance blocks writes from everyone but administrators while the
// settings have maintenance mode switched on.
func Maintenance(reg *dealership.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if reg.CurrentSettings().MaintenanceMode && CurrentSession(c).Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "System is under maintenance, changes are disabled"})
			return
		}
		c.Next()
	}
}
