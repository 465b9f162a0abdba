// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/AtRiskMedia/pagegrid-go/internal/application/container"
	"github.com/AtRiskMedia/pagegrid-go/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/pagegrid-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/pagegrid-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CORSMiddleware(config.CORSAllowedOrigins))

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)
	pageHandlers := handlers.NewPageHandlers(container.PageService, container.Logger, container.PerfTracker)
	layoutHandlers := handlers.NewLayoutHandlers(container.LayoutService, container.Logger, container.PerfTracker)
	contentTypeHandlers := handlers.NewContentTypeHandlers(container.ContentTypeService, container.Logger, container.PerfTracker)
	eventHandlers := handlers.NewEventHandlers(container.PageService, container.Broadcaster, config.CORSAllowedOrigins, config.EventPingInterval, container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container.DB, container.PageCache, container.Logger, container.PerfTracker)

	api := r.Group("/api/v1")
	{
		api.GET("/health", healthHandlers.GetHealth)

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandlers.PostLogin)
			auth.POST("/logout", authHandlers.PostLogout)
			auth.GET("/status", authHandlers.GetAuthStatus)
		}

		// Published pages are public.
		api.GET("/published/:key", pageHandlers.GetPublishedPage)

		editor := api.Group("")
		editor.Use(authHandlers.AuthMiddleware())
		{
			editor.GET("/health/stats", healthHandlers.GetStats)

			editor.GET("/content-types", contentTypeHandlers.GetContentTypes)
			editor.GET("/content-types/:type", contentTypeHandlers.GetContentType)

			pagesAPI := editor.Group("/pages")
			{
				pagesAPI.GET("", pageHandlers.GetPages)
				pagesAPI.POST("", pageHandlers.PostCreatePage)
				pagesAPI.GET("/:key", pageHandlers.GetPage)
				pagesAPI.PUT("/:key", pageHandlers.PutPage)
				pagesAPI.PATCH("/:key", layoutHandlers.PatchPageInfo)
				pagesAPI.DELETE("/:key", pageHandlers.DeletePage)
				pagesAPI.POST("/:key/publish", pageHandlers.PostPublishPage)
				pagesAPI.POST("/:key/repair", pageHandlers.PostRepairPage)
				pagesAPI.GET("/:key/events", eventHandlers.GetPageEvents)

				pagesAPI.POST("/:key/rows", layoutHandlers.PostAddRow)
				pagesAPI.DELETE("/:key/rows/:rowId", layoutHandlers.DeleteRow)
				pagesAPI.POST("/:key/rows/:rowId/cells", layoutHandlers.PostAddCell)
				pagesAPI.PATCH("/:key/rows/:rowId/cells/:cellId", layoutHandlers.PatchResizeCell)
				pagesAPI.DELETE("/:key/rows/:rowId/cells/:cellId", layoutHandlers.DeleteCell)

				pagesAPI.PUT("/:key/cells/:cellId/content", layoutHandlers.PutCellContent)
				pagesAPI.DELETE("/:key/cells/:cellId/content", layoutHandlers.DeleteCellContent)
				pagesAPI.POST("/:key/move", layoutHandlers.PostMove)

				pagesAPI.PUT("/:key/components/:itemKey", layoutHandlers.PutComponent)
				pagesAPI.DELETE("/:key/components/:itemKey", layoutHandlers.DeleteComponent)
			}
		}
	}

	return r
}
