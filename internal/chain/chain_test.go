package chain

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"
	"time"

	"github.com/educhain/certchain/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var contractAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

func newTestClient(t *testing.T) *EthereumClient {
	t.Helper()
	c, err := newEthereumClient(nil, contractAddr, big.NewInt(1337), zap.NewNop().Sugar())
	require.NoError(t, err)
	return c
}

func TestDisabledReason(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.ChainConfig
		wantReason bool
	}{
		{"nothing set", config.ChainConfig{}, true},
		{"missing contract", config.ChainConfig{RPC_URL: "https://rpc.example.org"}, true},
		{"bad contract", config.ChainConfig{RPC_URL: "https://rpc.example.org", CONTRACT_ADDRESS: "0x123"}, true},
		{"localhost", config.ChainConfig{RPC_URL: "http://127.0.0.1:8545", CONTRACT_ADDRESS: contractAddr.Hex()}, true},
		{"localhost allowed", config.ChainConfig{RPC_URL: "http://localhost:8545", CONTRACT_ADDRESS: contractAddr.Hex(), AllowLocalhost: true}, false},
		{"remote", config.ChainConfig{RPC_URL: "https://sepolia.infura.io/v3/key", CONTRACT_ADDRESS: contractAddr.Hex()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := disabledReason(tt.cfg)
			assert.Equal(t, tt.wantReason, reason != "", reason)
		})
	}
}

func TestIsLocalhost(t *testing.T) {
	assert.True(t, isLocalhost("http://localhost:8545"))
	assert.True(t, isLocalhost("ws://127.0.0.1:8546"))
	assert.True(t, isLocalhost("http://[::1]:8545"))
	assert.False(t, isLocalhost("https://eth-sepolia.g.alchemy.com/v2/key"))
	// A bare host without scheme still counts.
	assert.True(t, isLocalhost("127.0.0.1:8545"))
}

func TestNewReturnsDisabledWithoutConfig(t *testing.T) {
	client := New(context.Background(), config.ChainConfig{}, zap.NewNop().Sugar())
	require.NotNil(t, client)

	disabled, ok := client.(Disabled)
	require.True(t, ok)
	assert.NotEmpty(t, disabled.Reason)
}

func TestDisabledClient(t *testing.T) {
	d := Disabled{Reason: "RPC_URL or CONTRACT_ADDRESS not set"}

	_, err := d.Mint(context.Background(), "0xabc", "ipfs://Qm123abc")
	assert.ErrorIs(t, err, ErrChainUnavailable)

	_, err = d.Verify(context.Background(), 1)
	assert.ErrorIs(t, err, ErrChainUnavailable)

	info, err := d.Info(context.Background())
	require.NoError(t, err)
	assert.False(t, info.Enabled)
	assert.Equal(t, d.Reason, info.Reason)
}

func TestMintReadOnly(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Mint(context.Background(), "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", "ipfs://Qm123abc")
	assert.ErrorIs(t, err, ErrChainUnavailable)
}

func TestSetSignerAndInvalidStudent(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	c := newTestClient(t)
	require.NoError(t, c.setSigner("0x"+hex.EncodeToString(crypto.FromECDSA(key))))
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), c.signerAddr)
	require.NotNil(t, c.signer)

	_, err = c.Mint(context.Background(), "not-an-address", "ipfs://Qm123abc")
	assert.ErrorContains(t, err, "invalid student address")
}

func TestSetSignerRejectsGarbage(t *testing.T) {
	c := newTestClient(t)
	assert.Error(t, c.setSigner("zz"))
	assert.Nil(t, c.signer)
}

func TestTokenIdFromLogs(t *testing.T) {
	c := newTestClient(t)
	eventID := c.abi.Events[eventCertificateMinted].ID
	student := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	minted := &types.Log{
		Address: contractAddr,
		Topics:  []common.Hash{eventID, common.BigToHash(big.NewInt(7)), common.BytesToHash(student.Bytes())},
	}
	otherContract := &types.Log{
		Address: common.HexToAddress("0x0000000000000000000000000000000000000001"),
		Topics:  []common.Hash{eventID, common.BigToHash(big.NewInt(99))},
	}
	transfer := &types.Log{
		Address: contractAddr,
		Topics:  []common.Hash{crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)")), common.Hash{}, common.Hash{}, common.BigToHash(big.NewInt(7))},
	}

	tokenId, ok := c.tokenIdFromLogs([]*types.Log{transfer, otherContract, nil, minted})
	require.True(t, ok)
	assert.Equal(t, int64(7), tokenId.Int64())

	_, ok = c.tokenIdFromLogs([]*types.Log{transfer, otherContract})
	assert.False(t, ok)
}

func TestDecodeVerify(t *testing.T) {
	student := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	got, err := decodeVerify([]interface{}{true, student, big.NewInt(1700000000), "Qm123abc"})
	require.NoError(t, err)
	assert.True(t, got.IsValid)
	assert.Equal(t, student.Hex(), got.Student)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), got.IssueDate)
	assert.Equal(t, "Qm123abc", got.IpfsHash)

	_, err = decodeVerify([]interface{}{true})
	assert.Error(t, err)

	_, err = decodeVerify([]interface{}{"yes", student, big.NewInt(1), "Qm"})
	assert.Error(t, err)
}
