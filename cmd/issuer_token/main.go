// Command issuer_token prints a signed issuer token for an institution operator.
//
//	go run ./cmd/issuer_token -sub alice@uni.edu -institution "Example University"
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/educhain/certchain/internal/auth"
	"github.com/educhain/certchain/internal/config"
	"github.com/educhain/certchain/internal/env"
	"go.uber.org/zap"
)

func init() {
	env.LoadEnv(".env")
}

func main() {
	subject := flag.String("sub", "", "who the token is issued to")
	institution := flag.String("institution", "", "institution the operator issues for")
	flag.Parse()

	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()
	cfg := config.GetConfig()

	if !cfg.Auth.Enabled() {
		logger.Fatal("AUTH_JWT_SECRET is empty, issuer tokens would not be checked")
	}
	if *subject == "" {
		flag.Usage()
		os.Exit(2)
	}

	token, claims, err := auth.NewJwt(cfg.Auth, logger).GenerateIssuerToken(auth.IssuerPayload{
		Subject:     *subject,
		Institution: *institution,
	})
	if err != nil {
		logger.Fatal(err)
	}

	logger.Infow("Issuer token generated", "sub", claims.Subject, "expiresAt", claims.ExpiresAt.Time)
	fmt.Println(token)
}
