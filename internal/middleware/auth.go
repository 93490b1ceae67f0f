package middleware

import (
	"net/http"

	"github.com/educhain/certchain/internal/constant"
	"github.com/educhain/certchain/internal/util"
	"github.com/gin-gonic/gin"
)

// IssuerAuthMiddleware guards certificate minting with an issuer token.
// Without AUTH_JWT_SECRET every request passes, which is only meant for development.
func (m Middleware) IssuerAuthMiddleware(ctx *gin.Context) {
	if !m.app.Config.Auth.Enabled() {
		ctx.Next()
		return
	}

	token, err := util.ReadBearerToken(ctx)
	if err != nil {
		m.app.Logger.Debugf("Failed to read token: %v", err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(err, "unauthorized"), nil)
		return
	}

	claims, err := m.app.JWTService.VerifyIssuerToken(token)
	if err != nil {
		m.app.Logger.Debugf("Failed to verify token: %v", err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Invalid token", util.GenerateErrorMessages(err, "unauthorized"), nil)
		return
	}

	ctx.Set(constant.CTX_ISSUER, claims)
	ctx.Next()
}
