package route

import (
	"github.com/educhain/certchain/internal/controller"
	"github.com/educhain/certchain/internal/middleware"
	"github.com/gin-gonic/gin"
)

func studentRoutes(g *gin.RouterGroup, sc *controller.StudentController, middleware *middleware.Middleware) {
	g.GET("", sc.List)
	g.GET("/:address", sc.GetByAddress)
	g.POST("", middleware.IssuerAuthMiddleware, sc.Upsert)
}

func V1_Students(r *gin.RouterGroup, sc *controller.StudentController, middleware *middleware.Middleware) {
	studentRoutes(r.Group("/v1/students"), sc, middleware)
}

func Students(r *gin.RouterGroup, sc *controller.StudentController, middleware *middleware.Middleware) {
	studentRoutes(r.Group("/students"), sc, middleware)
}
