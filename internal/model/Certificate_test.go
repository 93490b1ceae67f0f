package model

import (
	"testing"

	"github.com/educhain/certchain/internal/constant"
)

func TestCertificateValidate(t *testing.T) {
	tokenId := int64(1)
	zero := int64(0)
	txHash := "0xdead"
	empty := ""

	tests := []struct {
		name    string
		cert    Certificate
		wantErr bool
	}{
		{"minted with all fields", Certificate{Status: constant.CertificateStatusMinted, TokenId: &tokenId, TransactionHash: &txHash, IpfsHash: "Qm1"}, false},
		{"minted without token id", Certificate{Status: constant.CertificateStatusMinted, TransactionHash: &txHash, IpfsHash: "Qm1"}, true},
		{"minted with zero token id", Certificate{Status: constant.CertificateStatusMinted, TokenId: &zero, TransactionHash: &txHash, IpfsHash: "Qm1"}, true},
		{"minted with empty tx hash", Certificate{Status: constant.CertificateStatusMinted, TokenId: &tokenId, TransactionHash: &empty, IpfsHash: "Qm1"}, true},
		{"minted without ipfs hash", Certificate{Status: constant.CertificateStatusMinted, TokenId: &tokenId, TransactionHash: &txHash}, true},
		{"failed without token", Certificate{Status: constant.CertificateStatusFailed, IpfsHash: "Qm1"}, false},
		{"unknown status", Certificate{Status: "revoked"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cert.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCertificateBeforeSaveNormalizes(t *testing.T) {
	c := &Certificate{StudentAddress: "0xABCDEF0000000000000000000000000000000001", IpfsHash: "Qm1"}
	if err := c.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave() error = %v", err)
	}

	if c.StudentAddress != "0xabcdef0000000000000000000000000000000001" {
		t.Errorf("address not lowercased: %s", c.StudentAddress)
	}
	if c.Status != constant.CertificateStatusPending {
		t.Errorf("status = %s, want pending", c.Status)
	}
	if c.IssueDate.IsZero() {
		t.Error("issue date should default to now")
	}
}
