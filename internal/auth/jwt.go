package auth

import (
	"errors"
	"time"

	"github.com/educhain/certchain/internal/config"
	"github.com/educhain/certchain/internal/constant"
	"github.com/educhain/certchain/internal/util"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var ErrInvalidTokenType = errors.New("invalid token type")

type JWT struct {
	logger    *zap.SugaredLogger
	jwtSecret string
	issuer    string
	ttl       time.Duration
}

type JWTInterface interface {
	GenerateIssuerToken(payload IssuerPayload) (string, *IssuerClaims, error)
	VerifyIssuerToken(token string) (*IssuerClaims, error)
}

func NewJwt(cfg config.AuthConfig, logger *zap.SugaredLogger) *JWT {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("")
	}

	return &JWT{
		jwtSecret: cfg.JWT_SECRET,
		issuer:    cfg.IssuerTokenIssue,
		ttl:       cfg.IssuerTokenTTL,
		logger:    logger,
	}
}

// IssuerPayload identifies who is allowed to issue certificates, usually an institution operator.
type IssuerPayload struct {
	Subject     string `json:"sub"`
	Institution string `json:"institution"`
}

type IssuerClaims struct {
	Institution string `json:"institution"`
	Type        string `json:"type"`
	jwt.RegisteredClaims
}

func (j JWT) GenerateIssuerToken(payload IssuerPayload) (string, *IssuerClaims, error) {
	j.logger.Debugf("Generate issuer token with payload: %v", payload)

	now := time.Now()
	claims := &IssuerClaims{
		Institution: payload.Institution,
		Type:        constant.JWT_TYPE_ISSUER,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   payload.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.jwtSecret))
	if err != nil {
		return "", nil, err
	}

	return token, claims, nil
}

func (j JWT) VerifyIssuerToken(token string) (*IssuerClaims, error) {
	claims := &IssuerClaims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(j.jwtSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		j.logger.Debugf("Failed to verify jwt token. Error: %v", err)
		return nil, err
	}

	if !parsedToken.Valid {
		j.logger.Debug("Jwt token is not valid")
		return nil, errors.New("jwt token is not valid")
	}

	if claims.Type != constant.JWT_TYPE_ISSUER {
		return nil, ErrInvalidTokenType
	}

	return claims, nil
}
