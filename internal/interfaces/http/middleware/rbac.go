package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "z-article-ai-api/pkg/errors"
)

// RequireRole 角色检查中间件
// 检查当前调用方是否为指定角色之一，否则返回 403
func RequireRole(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			abortForbidden(c, "missing role in context")
			return
		}
		if !roleSet[role] {
			abortForbidden(c, "role not allowed")
			return
		}
		c.Next()
	}
}

// abortForbidden 终止请求并返回 403
func abortForbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"code":     apperrors.CodePermissionDenied,
		"message":  msg,
		"trace_id": c.GetString("trace_id"),
	})
}
