package web

import (
	"github.com/gin-gonic/gin"
	"github.com/tcsclub/gallery-server/pkg/metrics"
)

func GetRouter(metricsListenAddress string, webHandler Handlers, withMetrics bool) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), GinLogger())
	if withMetrics {
		router.Use(metrics.PromReqMiddleware())
		go metrics.Server(metricsListenAddress)
	}
	router.Use(XForwardedProto("http"))

	api := router.Group("/api")
	api.GET("/gallery", webHandler.GetGallery)
	api.GET("/media/:id", webHandler.StreamMedia)
	api.GET("/thumbnail/:id", webHandler.Thumbnail)
	api.GET("/health", HealthCheckEndpoint)

	return router
}
