package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/educhain/certchain/internal/chain"
	"github.com/educhain/certchain/internal/metrics"
	"github.com/educhain/certchain/internal/model"
	"github.com/educhain/certchain/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type VerifyReason string

const (
	ReasonNotFoundLocally  VerifyReason = "NotFoundLocally"
	ReasonChainReadFailure VerifyReason = "ChainReadFailure"
	ReasonMismatch         VerifyReason = "Mismatch"
)

type Mismatch string

const (
	MismatchStatusNotMinted Mismatch = "StatusNotMinted"
	MismatchStudent         Mismatch = "StudentMismatch"
	MismatchRevokedOnChain  Mismatch = "RevokedOnChain"
)

// CertificateView is the locally stored side of a verification.
type CertificateView struct {
	CertificateId   string    `json:"certificateId"`
	StudentAddress  string    `json:"studentAddress"`
	StudentName     string    `json:"studentName"`
	CourseName      string    `json:"courseName"`
	Institution     string    `json:"institution"`
	IssueDate       time.Time `json:"issueDate"`
	Status          string    `json:"status"`
	TokenId         *int64    `json:"tokenId,omitempty"`
	TransactionHash *string   `json:"transactionHash,omitempty"`
	IpfsHash        string    `json:"ipfsHash,omitempty"`
}

type ChainView struct {
	IsValid   bool      `json:"isValid"`
	Student   string    `json:"student"`
	IssueDate time.Time `json:"issueDate"`
	IpfsHash  string    `json:"ipfsHash"`
	Holder    string    `json:"holder,omitempty"`
}

type VerifyResult struct {
	IsValid    bool         `json:"isValid"`
	Reason     VerifyReason `json:"reason,omitempty"`
	Mismatches []Mismatch   `json:"mismatches,omitempty"`
	// Human readable explanation of a negative result.
	Error       string           `json:"error,omitempty"`
	Certificate *CertificateView `json:"certificate,omitempty"`
	Blockchain  *ChainView       `json:"blockchain,omitempty"`
}

func newCertificateView(c *model.Certificate) *CertificateView {
	return &CertificateView{
		CertificateId:   c.CertificateId,
		StudentAddress:  c.StudentAddress,
		StudentName:     c.StudentName,
		CourseName:      c.CourseName,
		Institution:     c.Institution,
		IssueDate:       c.IssueDate,
		Status:          string(c.Status),
		TokenId:         c.TokenId,
		TransactionHash: c.TransactionHash,
		IpfsHash:        c.IpfsHash,
	}
}

type VerificationService struct {
	certificates CertificateStore
	chain        chain.Client
	logger       *zap.SugaredLogger
}

func NewVerificationService(certificates CertificateStore, chainClient chain.Client, logger *zap.SugaredLogger) *VerificationService {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("")
	}
	if chainClient == nil {
		chainClient = chain.Disabled{Reason: "no chain client configured"}
	}

	return &VerificationService{certificates: certificates, chain: chainClient, logger: logger}
}

// Verify cross-checks the stored certificate for tokenIdRaw against the chain. It never writes.
// Only a malformed token ID or a store failure is returned as an error, every other
// negative outcome is a result with IsValid false and a Reason.
func (s *VerificationService) Verify(ctx context.Context, tokenIdRaw string) (*VerifyResult, error) {
	tokenId, err := ParseTokenId(tokenIdRaw)
	if err != nil {
		return nil, err
	}

	cert, err := s.certificates.GetByTokenId(ctx, nil, tokenId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.VerificationTotal.WithLabelValues(string(ReasonNotFoundLocally)).Inc()
			return &VerifyResult{
				IsValid: false,
				Reason:  ReasonNotFoundLocally,
				Error:   "Certificate not found in database",
			}, nil
		}
		return nil, err
	}

	local := newCertificateView(cert)

	onChain, err := s.chain.Verify(ctx, tokenId)
	if err != nil {
		s.logger.Warnw("Blockchain verification failed", "tokenId", tokenId, "error", err)
		metrics.VerificationTotal.WithLabelValues(string(ReasonChainReadFailure)).Inc()
		return &VerifyResult{
			IsValid:     false,
			Reason:      ReasonChainReadFailure,
			Error:       "Blockchain verification failed: " + err.Error(),
			Certificate: local,
		}, nil
	}

	result := &VerifyResult{
		Certificate: local,
		Blockchain: &ChainView{
			IsValid:   onChain.IsValid,
			Student:   onChain.Student,
			IssueDate: onChain.IssueDate,
			IpfsHash:  onChain.IpfsHash,
			Holder:    onChain.Holder,
		},
	}

	if !onChain.IsValid {
		result.Mismatches = append(result.Mismatches, MismatchRevokedOnChain)
	}
	if !strings.EqualFold(onChain.Student, cert.StudentAddress) {
		result.Mismatches = append(result.Mismatches, MismatchStudent)
	}
	if !cert.IsMinted() {
		result.Mismatches = append(result.Mismatches, MismatchStatusNotMinted)
	}

	result.IsValid = len(result.Mismatches) == 0
	if !result.IsValid {
		result.Reason = ReasonMismatch
		result.Error = "Certificate verification failed"
		metrics.VerificationTotal.WithLabelValues(string(ReasonMismatch)).Inc()
	} else {
		metrics.VerificationTotal.WithLabelValues("Valid").Inc()
	}

	return result, nil
}
