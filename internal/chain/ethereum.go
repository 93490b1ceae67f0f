package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/educhain/certchain/internal/config"
	"github.com/educhain/certchain/internal/ipfs"
	"github.com/educhain/certchain/internal/util"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

type backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

type EthereumClient struct {
	backend  backend
	abi      abi.ABI
	address  common.Address
	contract *bind.BoundContract
	chainId  *big.Int

	// nil when PRIVATE_KEY is not set, the client is then read-only.
	signer     *bind.TransactOpts
	signerAddr common.Address

	// Serialises owner check and send so two mints never race on the signer's nonce.
	sendMu sync.Mutex

	logger *zap.SugaredLogger
}

// New connects to the configured chain. It never returns nil: when the chain
// cannot be used it returns Disabled with the reason.
func New(ctx context.Context, cfg config.ChainConfig, logger *zap.SugaredLogger) Client {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("")
	}

	if reason := disabledReason(cfg); reason != "" {
		logger.Warnf("Blockchain disabled: %s", reason)
		return Disabled{Reason: reason}
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := ethclient.DialContext(dialCtx, cfg.RPC_URL)
	if err != nil {
		logger.Warnf("Blockchain node not available, NFT minting will be disabled: %v", err)
		return Disabled{Reason: "failed to connect to RPC_URL"}
	}

	blockNumber, err := client.BlockNumber(dialCtx)
	if err != nil {
		client.Close()
		logger.Warnf("Blockchain node not available, NFT minting will be disabled: %v", err)
		return Disabled{Reason: "RPC_URL did not answer within " + timeout.String()}
	}

	chainId, err := client.ChainID(dialCtx)
	if err != nil {
		client.Close()
		logger.Warnf("Failed to read chain id: %v", err)
		return Disabled{Reason: "failed to read chain id"}
	}

	ec, err := newEthereumClient(client, common.HexToAddress(cfg.CONTRACT_ADDRESS), chainId, logger)
	if err != nil {
		client.Close()
		logger.Errorf("Failed to bind certificate contract: %v", err)
		return Disabled{Reason: "failed to bind certificate contract"}
	}

	if cfg.PRIVATE_KEY == "" {
		logger.Warn("No PRIVATE_KEY found, blockchain client is read-only")
	} else if err := ec.setSigner(cfg.PRIVATE_KEY); err != nil {
		logger.Warnf("Invalid PRIVATE_KEY, blockchain client is read-only: %v", err)
	}

	logger.Infow("Blockchain connection initialized",
		"contract", ec.address.Hex(),
		"chainId", chainId.String(),
		"latestBlock", blockNumber,
		"readOnly", ec.signer == nil,
	)

	return ec
}

func newEthereumClient(b backend, address common.Address, chainId *big.Int, logger *zap.SugaredLogger) (*EthereumClient, error) {
	parsed, err := abi.JSON(strings.NewReader(certificateABI))
	if err != nil {
		return nil, err
	}

	return &EthereumClient{
		backend:  b,
		abi:      parsed,
		address:  address,
		contract: bind.NewBoundContract(address, parsed, b, b, b),
		chainId:  chainId,
		logger:   logger,
	}, nil
}

func (c *EthereumClient) setSigner(hexKey string) error {
	key, err := parsePrivateKey(hexKey)
	if err != nil {
		return err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, c.chainId)
	if err != nil {
		return err
	}

	c.signer = opts
	c.signerAddr = crypto.PubkeyToAddress(key.PublicKey)
	return nil
}

func parsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	return crypto.HexToECDSA(hexKey)
}

func disabledReason(cfg config.ChainConfig) string {
	if cfg.RPC_URL == "" || cfg.CONTRACT_ADDRESS == "" {
		return "RPC_URL or CONTRACT_ADDRESS not set"
	}
	if !common.IsHexAddress(cfg.CONTRACT_ADDRESS) {
		return "CONTRACT_ADDRESS is not a valid address"
	}
	if isLocalhost(cfg.RPC_URL) && !cfg.AllowLocalhost {
		return "RPC_URL points to localhost, set CHAIN_ALLOW_LOCALHOST=true to use a local node"
	}
	return ""
}

func isLocalhost(rpcURL string) bool {
	u, err := url.Parse(rpcURL)
	if err != nil || u.Hostname() == "" {
		return strings.Contains(rpcURL, "localhost") || strings.Contains(rpcURL, "127.0.0.1")
	}

	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1", "0.0.0.0":
		return true
	}
	return false
}

func (c *EthereumClient) Mint(ctx context.Context, student, tokenURI string) (*MintResult, error) {
	if c.signer == nil {
		return nil, fmt.Errorf("%w: PRIVATE_KEY not set, client is read-only", ErrChainUnavailable)
	}
	if !common.IsHexAddress(student) {
		return nil, fmt.Errorf("invalid student address %q", student)
	}

	cid, err := ipfs.ExtractCID(tokenURI)
	if err != nil {
		return nil, err
	}

	tx, err := c.send(ctx, common.HexToAddress(student), cid)
	if err != nil {
		return nil, err
	}

	c.logger.Infow("Mint transaction sent", "tx", tx.Hash().Hex(), "student", student, "cid", cid)

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for mint transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("mint transaction %s reverted", receipt.TxHash.Hex())
	}

	tokenId, ok := c.tokenIdFromLogs(receipt.Logs)
	if !ok {
		c.logger.Warnw("CertificateMinted event not found, falling back to totalSupply", "tx", receipt.TxHash.Hex())
		tokenId, err = c.totalSupply(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTokenIdMissing, err)
		}
	}
	if tokenId.Sign() <= 0 || !tokenId.IsInt64() {
		return nil, fmt.Errorf("%w: got %s", ErrTokenIdMissing, tokenId.String())
	}

	return &MintResult{
		TokenId: tokenId.Int64(),
		TxHash:  receipt.TxHash.Hex(),
	}, nil
}

func (c *EthereumClient) send(ctx context.Context, student common.Address, cid string) (*types.Transaction, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	owner, err := c.owner(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract owner: %w", err)
	}
	if owner != c.signerAddr {
		return nil, ErrNotOwner
	}

	opts := *c.signer
	opts.Context = ctx

	tx, err := c.contract.Transact(&opts, methodMint, student, cid)
	if err != nil {
		return nil, fmt.Errorf("failed to send mint transaction: %w", err)
	}

	return tx, nil
}

// tokenIdFromLogs reads the indexed tokenId of the CertificateMinted event emitted by this contract.
func (c *EthereumClient) tokenIdFromLogs(logs []*types.Log) (*big.Int, bool) {
	event, ok := c.abi.Events[eventCertificateMinted]
	if !ok {
		return nil, false
	}

	for _, l := range logs {
		if l == nil || l.Address != c.address || len(l.Topics) < 2 {
			continue
		}
		if l.Topics[0] != event.ID {
			continue
		}
		return new(big.Int).SetBytes(l.Topics[1].Bytes()), true
	}

	return nil, false
}

func (c *EthereumClient) Verify(ctx context.Context, tokenId int64) (*VerifyResult, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodVerify, big.NewInt(tokenId)); err != nil {
		return nil, fmt.Errorf("failed to verify certificate on chain: %w", err)
	}

	result, err := decodeVerify(out)
	if err != nil {
		return nil, err
	}

	var holder []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &holder, methodTokenHolder, big.NewInt(tokenId)); err != nil {
		c.logger.Debugf("Failed to read holder of token %d: %v", tokenId, err)
	} else if len(holder) == 1 {
		if addr, ok := holder[0].(common.Address); ok {
			result.Holder = addr.Hex()
		}
	}

	return result, nil
}

func decodeVerify(out []interface{}) (*VerifyResult, error) {
	if len(out) != 4 {
		return nil, fmt.Errorf("unexpected verifyCertificate result length %d", len(out))
	}

	isValid, ok1 := out[0].(bool)
	student, ok2 := out[1].(common.Address)
	issueDate, ok3 := out[2].(*big.Int)
	ipfsHash, ok4 := out[3].(string)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, errors.New("unexpected verifyCertificate result types")
	}

	return &VerifyResult{
		IsValid:   isValid,
		Student:   student.Hex(),
		IssueDate: time.Unix(issueDate.Int64(), 0).UTC(),
		IpfsHash:  ipfsHash,
	}, nil
}

func (c *EthereumClient) owner(ctx context.Context) (common.Address, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodOwner); err != nil {
		return common.Address{}, err
	}
	if len(out) != 1 {
		return common.Address{}, errors.New("unexpected owner result")
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, errors.New("unexpected owner result type")
	}
	return addr, nil
}

func (c *EthereumClient) totalSupply(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodTotalSupply); err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, errors.New("unexpected totalSupply result")
	}
	supply, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected totalSupply result type")
	}
	return supply, nil
}

func (c *EthereumClient) Info(ctx context.Context) (*Info, error) {
	info := &Info{
		Enabled:         true,
		ReadOnly:        c.signer == nil,
		ContractAddress: c.address.Hex(),
		ChainId:         c.chainId.String(),
	}

	owner, err := c.owner(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract owner: %w", err)
	}
	info.Owner = owner.Hex()

	supply, err := c.totalSupply(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read total supply: %w", err)
	}
	if supply.IsInt64() {
		info.TotalSupply = supply.Int64()
	}

	if c.signer != nil {
		info.Signer = c.signerAddr.Hex()
		info.IsOwner = owner == c.signerAddr
	}

	return info, nil
}
