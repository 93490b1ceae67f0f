// Package chain talks to the certificate NFT contract on an EVM chain.
package chain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrChainUnavailable = errors.New("blockchain not available")
	ErrNotOwner         = errors.New("only contract owner can mint certificates, current signer is not the owner")
	ErrTokenIdMissing   = errors.New("could not determine minted token id")
)

type MintResult struct {
	TokenId int64
	TxHash  string
}

type VerifyResult struct {
	IsValid   bool      `json:"isValid"`
	Student   string    `json:"student"`
	IssueDate time.Time `json:"issueDate"`
	IpfsHash  string    `json:"ipfsHash"`
	// Current holder of the token, empty if the contract did not answer.
	Holder string `json:"holder,omitempty"`
}

type Info struct {
	Enabled         bool   `json:"enabled"`
	Reason          string `json:"reason,omitempty"`
	ReadOnly        bool   `json:"readOnly"`
	ContractAddress string `json:"contractAddress,omitempty"`
	ChainId         string `json:"chainId,omitempty"`
	Owner           string `json:"owner,omitempty"`
	Signer          string `json:"signer,omitempty"`
	IsOwner         bool   `json:"isOwner"`
	TotalSupply     int64  `json:"totalSupply"`
}

// Client is safe for concurrent use.
type Client interface {
	// Mint sends mintCertificate(student, cid) and waits for the receipt.
	// tokenURI may be "ipfs://<cid>", a gateway url or a bare cid.
	Mint(ctx context.Context, student, tokenURI string) (*MintResult, error)
	Verify(ctx context.Context, tokenId int64) (*VerifyResult, error)
	Info(ctx context.Context) (*Info, error)
}

// Disabled is the client used when no chain is configured or reachable.
// Every call fails with ErrChainUnavailable.
type Disabled struct {
	Reason string
}

func (d Disabled) err() error {
	return fmt.Errorf("%w: %s", ErrChainUnavailable, d.Reason)
}

func (d Disabled) Mint(ctx context.Context, student, tokenURI string) (*MintResult, error) {
	return nil, d.err()
}

func (d Disabled) Verify(ctx context.Context, tokenId int64) (*VerifyResult, error) {
	return nil, d.err()
}

func (d Disabled) Info(ctx context.Context) (*Info, error) {
	return &Info{Enabled: false, ReadOnly: true, Reason: d.Reason}, nil
}
