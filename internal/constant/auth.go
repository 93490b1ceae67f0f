package constant

const (
	JWT_TYPE_ISSUER = "issuer"

	// gin context key holding the verified issuer claims
	CTX_ISSUER = "issuer"
	// gin context key holding the request id
	CTX_REQUEST_ID = "requestId"
)
