package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"z-article-ai-api/pkg/logger"
)

// AuditConfig 审计配置
type AuditConfig struct {
	Enabled bool
	// SkipPaths 以 / 结尾的条目按前缀匹配
	SkipPaths []string
}

// DefaultAuditSkipPaths 探活、指标与静态图片不记审计
var DefaultAuditSkipPaths = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
	"/media/",
}

// AuditWithConfig 记录每个 API 调用的租户、角色与结果；
// 生成类写操作一律记录，失败请求按状态码提升日志级别
func AuditWithConfig(cfg AuditConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if skipAudit(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
			"tenant_id", c.GetString("tenant_id"),
			"user_id", c.GetString("user_id"),
			"role", c.GetString("role"),
			"request_id", c.GetString(string(logger.RequestIDKey)),
		}
		if key := c.GetHeader(IdempotencyKeyHeader); key != "" {
			fields = append(fields, "idempotency_key", key)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error(ctx, "api audit", nil, fields...)
		case status >= http.StatusBadRequest:
			logger.Warn(ctx, "api audit", fields...)
		default:
			logger.Info(ctx, "api audit", fields...)
		}
	}
}

func skipAudit(skip []string, path string) bool {
	for _, p := range skip {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}
