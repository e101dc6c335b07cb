package app

import (
	"exam_trainer_backend/docs"
	"exam_trainer_backend/internal/config"
	"exam_trainer_backend/internal/middleware"
	"exam_trainer_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		// 考试会话
		exam := authGroup.Group("/exam")
		{
			exam.POST("/start", c.exam.Start)
			exam.GET("/current", c.exam.Current)
			exam.POST("/answer/choice", c.exam.AnswerChoice)
			exam.POST("/answer/code", c.exam.AnswerCode)
			exam.POST("/judge", c.exam.Judge)
			exam.GET("/questions/:id/testcases", c.exam.TestCases)
			exam.POST("/goto", c.exam.Goto)
			exam.POST("/submit", c.exam.Submit)
			exam.POST("/save", c.exam.Save)
			exam.POST("/resume", c.exam.Resume)
			exam.GET("/resume/available", c.exam.ResumeAvailable)
			exam.POST("/restart", c.exam.Restart)
		}

		// 历史成绩
		history := authGroup.Group("/history")
		{
			history.GET("", c.history.List)
			history.GET("/stats", c.history.Stats)
			history.POST("/:id/export", c.history.Export)
		}
	}
}
