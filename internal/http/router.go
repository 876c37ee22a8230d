package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouterConfig wires handlers and middleware into the route table.
type RouterConfig struct {
	Classes *ClassHandler
	Sync    *SyncHandler
	Logger  *slog.Logger
}

// NewRouter builds the gin engine with the full route table.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(cfg.Logger))

	api := router.Group("/api")

	api.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if cfg.Classes != nil {
		authed := api.Group("", RequireCaller())
		authed.POST("/classes/:classId/start", cfg.Classes.Start)
		authed.POST("/classes/:classId/join", cfg.Classes.Join)

		api.POST("/classes", cfg.Classes.Create)
		api.GET("/classes/:classId", cfg.Classes.Get)
		api.GET("/classes/:classId/sessions", cfg.Classes.Sessions)
		api.GET("/classes/:classId/occurrences", cfg.Classes.Occurrences)
	}

	if cfg.Sync != nil {
		api.POST("/sessions/sync", cfg.Sync.Sync)
	}

	return router
}
