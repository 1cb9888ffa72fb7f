package app

import (
	"courseware_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		// 1. 评估
		evaluations := api.Group("/evaluations")
		{
			evaluations.POST("", c.evaluation.Evaluate)
			evaluations.POST("/test", c.evaluation.EvaluateTest)
		}

		// 2. 进度与学生作用域
		deployments := api.Group("/deployments/:deploymentId")
		{
			deployments.GET("/elements/:elementId/progress", c.progress.GetProgress)
			deployments.GET("/scopes", c.scope.GetEntries)
			deployments.PUT("/scopes", c.scope.SetEntry)
		}

		// 3. 能力
		api.GET("/competencies/:documentId", c.competency.GetStudentCompetencies)
	}
}
