// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"z-article-ai-api/internal/application/article"
	"z-article-ai-api/internal/interfaces/http/dto"
	"z-article-ai-api/internal/interfaces/http/middleware"
	"z-article-ai-api/pkg/errors"
	"z-article-ai-api/pkg/logger"
)

// respondError 将错误映射为统一错误响应
func respondError(c *gin.Context, err error, msg string) {
	ctx := c.Request.Context()

	var appErr *errors.AppError
	if errors.IsAppError(err) {
		appErr = errors.AsAppError(err)
	} else {
		appErr = article.ToAppError(err)
	}

	if appErr.HTTPStatus >= 500 {
		logger.Error(ctx, msg, err, "code", appErr.Code)
	} else {
		logger.Warn(ctx, msg, "error", err, "code", appErr.Code)
	}
	_ = c.Error(err)
	dto.AppError(c, appErr)
}

// tenantOf 当前请求的租户，由认证中间件写入
func tenantOf(c *gin.Context) string {
	return middleware.GetTenantIDFromGin(c)
}
