package middleware

import (
	"net/http"
	"strings"

	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/service"
	"github.com/nazirsaif/nexus-sub000/pkg/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context keys set by RequireAuth.
const (
	CtxUserID = "userId"
	CtxRole   = "role"
)

// extractToken pulls the access token from the Authorization bearer header or
// the legacy x-auth-token header.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.GetHeader("x-auth-token")
}

// RequireAuth ensures a valid JWT is present and stores its claims in the
// context for downstream handlers.
func RequireAuth(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.NewErrorResponse("Missing authentication token", ""))
			return
		}

		claims, err := tokens.ParseAccessToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.NewErrorResponse("Invalid or expired token", ""))
			return
		}

		userID, err := util.ParseObjectID(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.NewErrorResponse("Invalid token claims", ""))
			return
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// UserID returns the authenticated user's id from the context.
func UserID(c *gin.Context) primitive.ObjectID {
	if v, ok := c.Get(CtxUserID); ok {
		if id, ok := v.(primitive.ObjectID); ok {
			return id
		}
	}
	return primitive.NilObjectID
}

// Role returns the authenticated user's role from the context.
func Role(c *gin.Context) string {
	if v, ok := c.Get(CtxRole); ok {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}
