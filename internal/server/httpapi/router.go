package httpapi

import "github.com/gin-gonic/gin"

// NewRouter assembles the gin engine: an open liveness probe and the
// authenticated upload endpoint.
func NewRouter(handler *UploadHandler, auth *AuthMiddleware) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", handler.Health)
	router.POST("/upload", auth.RequireAuth(), handler.Upload)

	return router
}
