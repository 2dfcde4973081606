package api

import (
	"github.com/gin-gonic/gin"

	"github.com/hackfiles/file-vault/cmd/middleware"
	"github.com/hackfiles/file-vault/internal/api/handlers"
	"github.com/hackfiles/file-vault/internal/api/handlers/admin"
	"github.com/hackfiles/file-vault/internal/api/handlers/file"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, PATCH, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

func RegisterRoutes(r *gin.Engine) {
	// Enable CORS for preflight requests
	r.Use(corsMiddleware())

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/timer-config", handlers.GetTimerConfig)
	}

	authed := api.Group("", middleware.RequireAuth())
	{
		authed.GET("/auth/user", handlers.GetCurrentUser)

		// File endpoints
		authed.GET("/files", file.List)                    // list a directory, with filters
		authed.POST("/files/upload", file.Upload)          // upload one or more files
		authed.POST("/files/upload-folder", file.UploadTree) // folder upload with relative paths
		authed.POST("/files/folder", file.CreateFolder)    // create an empty folder
		authed.GET("/files/download/:id", file.Download)   // stream a file
		authed.DELETE("/files/:id", file.Delete)           // delete file or folder subtree
		authed.POST("/files/bulk-delete", file.BulkDelete) // delete many, isolated per id
	}

	adminGroup := authed.Group("/admin", middleware.RequireAdmin())
	{
		adminGroup.GET("/stats", admin.GetStats)
		adminGroup.GET("/timer", admin.GetTimer)
		adminGroup.POST("/timer", admin.UpdateTimer)
		adminGroup.GET("/s3-browse", admin.BrowseObjects)
		adminGroup.GET("/users", admin.ListUsers)
		adminGroup.PATCH("/users/:id/active", admin.SetUserActive)
		adminGroup.DELETE("/users/:id", admin.DeleteUser)
	}
}
