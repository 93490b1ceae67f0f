package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/educhain/certchain/internal/constant"
	"github.com/educhain/certchain/internal/metadata"
	"github.com/educhain/certchain/internal/model"
	"github.com/educhain/certchain/internal/repository"
	"github.com/educhain/certchain/internal/util"
	"github.com/educhain/certchain/pkg/certqr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LookupKind string

const (
	LookupById            LookupKind = "id"
	LookupByCertificateId LookupKind = "certificateId"
	LookupByTokenId       LookupKind = "tokenId"
)

var ErrVerifyURLNotConfigured = errors.New("PUBLIC_VERIFY_URL is not configured")

// LookupKey names which identifier Value is.
type LookupKey struct {
	Kind  LookupKind
	Value string
}

func ParseLookupKind(s string) (LookupKind, error) {
	switch LookupKind(s) {
	case LookupById, LookupByCertificateId, LookupByTokenId:
		return LookupKind(s), nil
	}
	return "", fmt.Errorf("%w: by must be one of id, certificateId, tokenId", ErrValidation)
}

type CertificateFilter struct {
	StudentAddress string
	Status         string
	Limit          int
}

type CertificateService struct {
	certificates    CertificateStore
	publicVerifyURL string
	logger          *zap.SugaredLogger
}

func NewCertificateService(certificates CertificateStore, publicVerifyURL string, logger *zap.SugaredLogger) *CertificateService {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("")
	}

	return &CertificateService{certificates: certificates, publicVerifyURL: publicVerifyURL, logger: logger}
}

func (s *CertificateService) Get(ctx context.Context, key LookupKey) (*model.Certificate, error) {
	value := strings.TrimSpace(key.Value)
	if value == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}

	var (
		cert *model.Certificate
		err  error
	)

	switch key.Kind {
	case LookupById:
		cert, err = s.certificates.GetById(ctx, nil, value)
	case LookupByCertificateId:
		cert, err = s.certificates.GetByCertificateId(ctx, nil, value)
	case LookupByTokenId:
		tokenId, perr := ParseTokenId(value)
		if perr != nil {
			return nil, perr
		}
		cert, err = s.certificates.GetByTokenId(ctx, nil, tokenId)
	default:
		return nil, fmt.Errorf("%w: unknown lookup kind %q", ErrValidation, key.Kind)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: certificate not found", ErrNotFound)
	}
	return cert, err
}

// Resolve tries raw as an internal id, then a certificate ID, then a token ID when numeric.
func (s *CertificateService) Resolve(ctx context.Context, raw string) (*model.Certificate, error) {
	keys := []LookupKey{
		{Kind: LookupById, Value: raw},
		{Kind: LookupByCertificateId, Value: raw},
	}
	if _, err := ParseTokenId(raw); err == nil {
		keys = append(keys, LookupKey{Kind: LookupByTokenId, Value: raw})
	}

	for _, key := range keys {
		cert, err := s.Get(ctx, key)
		if err == nil {
			return cert, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: certificate not found", ErrNotFound)
}

// List returns certificates newest first. A limit outside 1..100 means 100.
func (s *CertificateService) List(ctx context.Context, filter CertificateFilter) ([]model.Certificate, error) {
	status := constant.CertificateStatus(strings.TrimSpace(filter.Status))
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: status must be one of pending, minted, failed", ErrValidation)
	}

	return s.certificates.List(ctx, nil, repository.CertificateFilter{
		StudentAddress: strings.TrimSpace(filter.StudentAddress),
		Status:         status,
		Limit:          normalizeLimit(filter.Limit),
	})
}

// QRCode renders a QR code of the certificate's public verification page.
func (s *CertificateService) QRCode(ctx context.Context, raw string, format certqr.Format) ([]byte, error) {
	if s.publicVerifyURL == "" {
		return nil, ErrVerifyURLNotConfigured
	}

	cert, err := s.Resolve(ctx, raw)
	if err != nil {
		return nil, err
	}

	return certqr.Encode(metadata.VerifyURL(s.publicVerifyURL, cert.CertificateId), format, certqr.DefaultSize)
}
