package controller

import (
	"github.com/educhain/certchain/internal/util"
	"github.com/gin-gonic/gin"
)

type ChainController struct {
	*baseController
}

// Info reports the contract, its owner and whether this server can mint.
func (cc ChainController) Info(ctx *gin.Context) {
	info, err := cc.app.Service.Chain.Info(ctx)
	if err != nil {
		cc.responseServiceError(ctx, err, "Failed to read contract info", "")
		return
	}

	util.ResponseSuccess(ctx, info)
}
