package service

import (
	"context"

	"github.com/educhain/certchain/internal/chain"
)

type ChainService struct {
	chain chain.Client
}

func NewChainService(chainClient chain.Client) *ChainService {
	if chainClient == nil {
		chainClient = chain.Disabled{Reason: "no chain client configured"}
	}
	return &ChainService{chain: chainClient}
}

// Info reports whether minting is possible and who may mint.
func (s *ChainService) Info(ctx context.Context) (*chain.Info, error) {
	return s.chain.Info(ctx)
}
