package gallery

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, s *Server) {
	api := r.Group("/api")

	api.POST("/images", s.uploadImage)
	api.GET("/images", s.listImages)
	api.GET("/images/:id", s.getImage)
	api.GET("/images/:id/file", s.getImageFile)
	api.PATCH("/images/:id", s.updateImage)

	api.GET("/loras/:hash", s.getLoraByHash)
}
