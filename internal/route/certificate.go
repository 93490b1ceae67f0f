package route

import (
	"github.com/educhain/certchain/internal/controller"
	"github.com/educhain/certchain/internal/middleware"
	"github.com/gin-gonic/gin"
)

func certificateRoutes(g *gin.RouterGroup, cc *controller.CertificateController, middleware *middleware.Middleware) {
	g.POST("/mint", middleware.IssuerAuthMiddleware, cc.Mint)
	g.GET("/verify/:tokenId", cc.Verify)
	g.GET("", cc.List)
	g.GET("/:id", cc.GetById)
	g.GET("/:id/qrcode", cc.QRCode)
}

func V1_Certificates(r *gin.RouterGroup, cc *controller.CertificateController, middleware *middleware.Middleware) {
	certificateRoutes(r.Group("/v1/certificates"), cc, middleware)
}

// Certificates keeps the unversioned paths existing clients already call.
func Certificates(r *gin.RouterGroup, cc *controller.CertificateController, middleware *middleware.Middleware) {
	certificateRoutes(r.Group("/certificates"), cc, middleware)
}
