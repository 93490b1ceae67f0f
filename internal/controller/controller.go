package controller

import (
	"errors"
	"net/http"

	appcontext "github.com/educhain/certchain/internal/app_context"
	"github.com/educhain/certchain/internal/auth"
	"github.com/educhain/certchain/internal/constant"
	"github.com/educhain/certchain/internal/service"
	"github.com/educhain/certchain/internal/util"
	"github.com/gin-gonic/gin"
)

type baseController struct {
	app *appcontext.Application
}

type Controller struct {
	Index       *IndexController
	Certificate *CertificateController
	Student     *StudentController
	Chain       *ChainController
}

func newBaseController(app *appcontext.Application) *baseController {
	return &baseController{app: app}
}

func NewController(app *appcontext.Application) *Controller {
	bc := newBaseController(app)

	return &Controller{
		Index:       &IndexController{baseController: bc},
		Certificate: &CertificateController{baseController: bc},
		Student:     &StudentController{baseController: bc},
		Chain:       &ChainController{baseController: bc},
	}
}

// getIssuer returns the claims set by the issuer auth middleware, nil when auth is disabled.
func (b *baseController) getIssuer(ctx *gin.Context) *auth.IssuerClaims {
	v, exists := ctx.Get(constant.CTX_ISSUER)
	if !exists {
		return nil
	}

	claims, _ := v.(*auth.IssuerClaims)
	return claims
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrDuplicateCertificate),
		errors.Is(err, service.ErrInvalidTokenId):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// responseServiceError logs err at a level matching its status and writes the failed envelope.
func (b *baseController) responseServiceError(ctx *gin.Context, err error, message string, field string) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		b.app.Logger.Errorw(message, "path", ctx.FullPath(), "error", err)
	} else {
		b.app.Logger.Debugw(message, "path", ctx.FullPath(), "error", err)
	}

	util.ResponseFailed(ctx, code, err.Error(), util.GenerateErrorMessages(err, field), nil)
}
