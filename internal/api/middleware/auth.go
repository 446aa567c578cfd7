package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/5sursyncIT/edusync-sub001/pkg/jwt"
	"github.com/5sursyncIT/edusync-sub001/pkg/response"
)

// Context keys set by the auth middleware.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// AnonymousUser runs every request when authentication is disabled.
const AnonymousUser = "local"

// JWTAuth verifies the Bearer access token. A nil manager turns
// authentication off; requests then run as the local admin.
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtMgr == nil {
			c.Set(CtxUserID, AnonymousUser)
			c.Set(CtxRole, jwt.RoleAdmin)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AbortWithError(c, 401, response.CodeUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.AbortWithError(c, 401, response.CodeUnauthorized, "malformed authorization header")
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.AbortWithError(c, 401, response.CodeUnauthorized, "token invalid or expired")
			return
		}

		if claims.TokenType != "access" || claims.UserID == "" {
			response.AbortWithError(c, 401, response.CodeUnauthorized, "token type invalid")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)

		c.Next()
	}
}

// RoleAuth lets through users holding one of the given roles.
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(CtxRole)
		if !exists {
			response.AbortWithError(c, 401, response.CodeUnauthorized, "not authenticated")
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.AbortWithError(c, 403, response.CodeForbidden, "forbidden")
	}
}
