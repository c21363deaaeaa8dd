package router

import (
	"z-article-ai-api/internal/interfaces/http/handler"
	"z-article-ai-api/internal/interfaces/http/middleware"
	"z-article-ai-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	articleHandler *handler.ArticleHandler,
	jobHandler *handler.JobHandler,
	generateLimit gin.HandlerFunc,
) {
	canGenerate := middleware.RequireRole(utils.RoleEditor, utils.RoleService)

	// 文章
	if articleHandler != nil {
		articles := v1.Group("/articles")
		{
			articles.GET("", articleHandler.ListArticles)
			articles.GET("/:aid", articleHandler.GetArticle)
			articles.POST("/generate", canGenerate, generateLimit, articleHandler.Generate)
			articles.POST("/generate/async", canGenerate, generateLimit, articleHandler.GenerateAsync)
		}
	}

	// 生成任务
	if jobHandler != nil {
		jobs := v1.Group("/jobs")
		{
			jobs.GET("", jobHandler.ListJobs)
			jobs.GET("/:jid", jobHandler.GetJob)
			jobs.DELETE("/:jid", canGenerate, jobHandler.CancelJob)
		}
	}
}
