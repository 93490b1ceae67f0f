package route

import (
	"github.com/educhain/certchain/internal/controller"
	"github.com/gin-gonic/gin"
)

func V1_Chain(r *gin.RouterGroup, cc *controller.ChainController) {
	r.GET("/v1/chain", cc.Info)
	r.GET("/chain", cc.Info)
}

func V1_Health(r *gin.RouterGroup, ic *controller.IndexController) {
	r.GET("/v1/health", ic.Health)
	r.GET("/health", ic.Health)
}
