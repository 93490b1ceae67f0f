package auth

import (
	"testing"
	"time"

	"github.com/educhain/certchain/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func newTestJwt(ttl time.Duration) *JWT {
	return NewJwt(config.AuthConfig{
		JWT_SECRET:       "test-secret",
		IssuerTokenTTL:   ttl,
		IssuerTokenIssue: "educhain",
	}, zap.NewNop().Sugar())
}

// Perform token generation and verify the generated token to ensure VerifyIssuerToken is correct
func TestIssuerToken(t *testing.T) {
	jwtService := newTestJwt(time.Hour)

	token, claims, err := jwtService.GenerateIssuerToken(IssuerPayload{
		Subject:     "registrar",
		Institution: "EduChain University",
	})
	if err != nil {
		t.Fatalf("An error occurred during issuer token generation. Error: %v", err)
	}

	got, err := jwtService.VerifyIssuerToken(token)
	if err != nil {
		t.Fatalf("An error occurred during issuer token verification. Error: %v", err)
	}

	if got.Subject != "registrar" || got.Institution != "EduChain University" {
		t.Errorf("unexpected claims %+v", got)
	}
	if !got.ExpiresAt.Equal(claims.ExpiresAt.Time) {
		t.Errorf("expiry mismatch, got %v want %v", got.ExpiresAt, claims.ExpiresAt)
	}
}

func TestVerifyIssuerTokenRejects(t *testing.T) {
	jwtService := newTestJwt(time.Hour)

	expired, _, err := newTestJwt(-time.Minute).GenerateIssuerToken(IssuerPayload{Subject: "registrar"})
	if err != nil {
		t.Fatal(err)
	}

	otherSecret := NewJwt(config.AuthConfig{JWT_SECRET: "other", IssuerTokenTTL: time.Hour, IssuerTokenIssue: "educhain"}, zap.NewNop().Sugar())
	forged, _, err := otherSecret.GenerateIssuerToken(IssuerPayload{Subject: "registrar"})
	if err != nil {
		t.Fatal(err)
	}

	otherIssuer := NewJwt(config.AuthConfig{JWT_SECRET: "test-secret", IssuerTokenTTL: time.Hour, IssuerTokenIssue: "someone-else"}, zap.NewNop().Sugar())
	foreign, _, err := otherIssuer.GenerateIssuerToken(IssuerPayload{Subject: "registrar"})
	if err != nil {
		t.Fatal(err)
	}

	wrongType, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &IssuerClaims{
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "educhain",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", forged},
		{"wrong issuer", foreign},
		{"wrong type", wrongType},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := jwtService.VerifyIssuerToken(tt.token); err == nil {
				t.Errorf("expected %s token to be rejected", tt.name)
			}
		})
	}
}
