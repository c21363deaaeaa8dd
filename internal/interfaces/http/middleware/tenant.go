package middleware

import (
	"github.com/gin-gonic/gin"

	"z-article-ai-api/pkg/logger"
)

// TenantHeader 开发模式下携带租户 ID 的请求头
const TenantHeader = "X-Tenant-ID"

// Tenant 要求请求带有租户，并把租户写入日志上下文
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetString("tenant_id")
		if tenantID == "" {
			abortUnauthorized(c, "tenant not resolved")
			return
		}

		ctx := logger.WithContext(c.Request.Context(), logger.TenantIDKey, tenantID)
		if userID := c.GetString("user_id"); userID != "" {
			ctx = logger.WithContext(ctx, logger.UserIDKey, userID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetTenantIDFromGin 从 Gin Context 中获取租户 ID
func GetTenantIDFromGin(c *gin.Context) string {
	return c.GetString("tenant_id")
}
