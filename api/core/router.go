package core

import (
	"github.com/aivory/fitstudio/api/common"
	"github.com/aivory/fitstudio/api/handler/auth"
	"github.com/aivory/fitstudio/api/handler/creditsapi"
	"github.com/aivory/fitstudio/api/handler/profile"
	"github.com/aivory/fitstudio/api/handler/studio"
	"github.com/aivory/fitstudio/api/middleware"
	"github.com/aivory/fitstudio/config"
	"github.com/gin-gonic/gin"
)

// registerRoutes 注册所有路由
func registerRoutes(router *gin.Engine, deps *ServerDependencies, authRateLimiter, apiRateLimiter *middleware.IPRateLimiter) {
	registerBasicRoutes(router, deps)

	// 创建处理器（依赖注入）
	authHandler := auth.NewHandler(deps.AccountSvc)
	profileHandler := profile.NewHandler(deps.AccountSvc, deps.MediaSvc)
	creditsHandler := creditsapi.NewHandler(deps.CreditsSvc)
	studioHandler := studio.NewHandler(deps.GenerationSvc, deps.MediaSvc)

	apiGroup := router.Group("/api")
	apiGroup.Use(func(context *gin.Context) { // 所有API禁止缓存
		context.Header("Cache-Control", "no-store")
		context.Next()
	})
	{
		authGroup := apiGroup.Group("/auth")
		authGroup.Use(authRateLimiter.Middleware())
		{
			authGroup.POST("/signup", authHandler.Signup)   // POST /api/auth/signup
			authGroup.POST("/login", authHandler.Login)     // POST /api/auth/login
			authGroup.POST("/refresh", authHandler.Refresh) // POST /api/auth/refresh
			authGroup.POST("/logout", authHandler.Logout)   // POST /api/auth/logout
		}

		v1 := apiGroup.Group("/v1")
		v1.Use(apiRateLimiter.Middleware())
		v1.Use(middleware.JWTAuth())
		{
			// profile
			profileGroup := v1.Group("/profile")
			{
				profileGroup.GET("", profileHandler.Get)       // GET /api/v1/profile
				profileGroup.PATCH("", profileHandler.Update)  // PATCH /api/v1/profile
				profileGroup.DELETE("", profileHandler.Delete) // DELETE /api/v1/profile
			}

			// credits
			creditsGroup := v1.Group("/credits")
			{
				creditsGroup.GET("", creditsHandler.Balance)                   // GET /api/v1/credits
				creditsGroup.POST("/purchase", creditsHandler.Purchase)        // POST /api/v1/credits/purchase
				creditsGroup.GET("/transactions", creditsHandler.Transactions) // GET /api/v1/credits/transactions
			}

			// studio
			studioGroup := v1.Group("/studio")
			{
				studioGroup.POST("/generate", studioHandler.Generate)               // POST /api/v1/studio/generate
				studioGroup.GET("/history", studioHandler.ListHistory)              // GET /api/v1/studio/history
				studioGroup.GET("/history/:id/images", studioHandler.HistoryImages) // GET /api/v1/studio/history/{id}/images
				studioGroup.DELETE("/history/:id", studioHandler.DeleteHistory)     // DELETE /api/v1/studio/history/{id}
				studioGroup.GET("/images", studioHandler.ListImages)                // GET /api/v1/studio/images
			}
		}
	}
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *ServerDependencies) {
	router.GET("/health", healthHandler(deps))

	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})
}
