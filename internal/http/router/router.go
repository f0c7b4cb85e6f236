package router

import (
	"github.com/gin-gonic/gin"

	"qualisync.app/bridge/internal/http/handler"
	"qualisync.app/bridge/internal/sync"
)

func SetupRoutes(router *gin.Engine, syncService sync.Service) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	syncHandler := handler.NewSyncHandler(syncService)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sync/findings", syncHandler.SyncFindings)
		v1.POST("/sync/close", syncHandler.CloseResolved)
	}
}
