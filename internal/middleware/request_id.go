package middleware

import (
	"github.com/educhain/certchain/internal/constant"
	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	HeaderRequestId = "X-Request-Id"

	// Lowercase and unambiguous so ids can be read back from logs over the phone.
	requestIdAlphabet  = "23456789abcdefghjkmnpqrstuvwxyz"
	requestIdLength    = 16
	maxRequestIdLength = 64
)

func newRequestId() (string, error) {
	return gonanoid.Generate(requestIdAlphabet, requestIdLength)
}

// RequestIdMiddleware keeps a caller supplied X-Request-Id or generates one, and echoes it back.
func (m Middleware) RequestIdMiddleware(ctx *gin.Context) {
	id := ctx.GetHeader(HeaderRequestId)
	if id == "" || len(id) > maxRequestIdLength {
		generated, err := newRequestId()
		if err != nil {
			m.app.Logger.Warnf("Failed to generate request id: %v", err)
			ctx.Next()
			return
		}
		id = generated
	}

	ctx.Set(constant.CTX_REQUEST_ID, id)
	ctx.Header(HeaderRequestId, id)
	ctx.Next()
}
