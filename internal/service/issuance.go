package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/educhain/certchain/internal/chain"
	"github.com/educhain/certchain/internal/constant"
	filestorage "github.com/educhain/certchain/internal/file_storage"
	"github.com/educhain/certchain/internal/ipfs"
	"github.com/educhain/certchain/internal/mailer"
	"github.com/educhain/certchain/internal/metadata"
	"github.com/educhain/certchain/internal/metrics"
	"github.com/educhain/certchain/internal/model"
	"github.com/educhain/certchain/internal/repository"
	"github.com/educhain/certchain/internal/util"
	"go.uber.org/zap"
)

// IssueState is the step an issuance has reached.
type IssueState string

const (
	StateValidated IssueState = "validated"
	StatePinned    IssueState = "pinned"
	StateMinted    IssueState = "minted"
	StatePersisted IssueState = "persisted"
	// Mint failed, a failed row records the pinned metadata.
	StateFailed IssueState = "failed"
	// The token exists on chain but no minted row could be written. Nothing repairs this automatically.
	StateMintedUnpersisted IssueState = "minted_unpersisted"
)

type IssueRequest struct {
	CertificateId  string
	StudentAddress string
	StudentName    string
	CourseName     string
	Institution    string
	// Defaults to the time of the request.
	IssueDate *time.Time
}

type NFT struct {
	TokenId         int64  `json:"tokenId"`
	TransactionHash string `json:"transactionHash"`
	IpfsHash        string `json:"ipfsHash"`
}

type IssueResult struct {
	Certificate *model.Certificate `json:"certificate"`
	NFT         NFT                `json:"nft"`
}

type IssuanceDeps struct {
	Certificates CertificateStore
	Students     StudentStore
	Pinner       ipfs.Pinner
	Chain        chain.Client
	// Optional, defaults to no-op.
	Archiver filestorage.Archiver
	// Optional, defaults to no-op.
	Mailer mailer.Client
}

type IssuanceConfig struct {
	PublicVerifyURL string
	StrictCID       bool
}

type IssuanceService struct {
	certificates CertificateStore
	students     StudentStore
	pinner       ipfs.Pinner
	chain        chain.Client
	archiver     filestorage.Archiver
	mailer       mailer.Client
	cfg          IssuanceConfig
	logger       *zap.SugaredLogger

	now func() time.Time
	// Runs best-effort work that must not hold the response, replaced in tests.
	background func(func())
}

func NewIssuanceService(deps IssuanceDeps, cfg IssuanceConfig, logger *zap.SugaredLogger) *IssuanceService {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("")
	}
	if deps.Chain == nil {
		deps.Chain = chain.Disabled{Reason: "no chain client configured"}
	}
	if deps.Archiver == nil {
		deps.Archiver = filestorage.Noop{}
	}
	if deps.Mailer == nil {
		deps.Mailer = mailer.Noop{}
	}

	return &IssuanceService{
		certificates: deps.Certificates,
		students:     deps.Students,
		pinner:       deps.Pinner,
		chain:        deps.Chain,
		archiver:     deps.Archiver,
		mailer:       deps.Mailer,
		cfg:          cfg,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		background:   func(f func()) { go f() },
	}
}

// issuance tracks one run of the workflow so every transition is logged with the same fields.
type issuance struct {
	state  IssueState
	logger *zap.SugaredLogger
}

func (is *issuance) advance(state IssueState, kv ...any) {
	is.logger.Infow("Issuance step", append([]any{"from", is.state, "to", state}, kv...)...)
	is.state = state
}

func (r *IssueRequest) normalize() {
	r.CertificateId = strings.TrimSpace(r.CertificateId)
	r.StudentAddress = strings.ToLower(strings.TrimSpace(r.StudentAddress))
	r.StudentName = strings.TrimSpace(r.StudentName)
	r.CourseName = strings.TrimSpace(r.CourseName)
	r.Institution = strings.TrimSpace(r.Institution)
}

func (r IssueRequest) validate() error {
	if r.CertificateId == "" || r.StudentAddress == "" || r.StudentName == "" || r.CourseName == "" || r.Institution == "" {
		return fmt.Errorf("%w: missing required fields: certificateId, studentAddress, studentName, courseName, institution", ErrValidation)
	}
	if !IsAddress(r.StudentAddress) {
		return fmt.Errorf("%w: invalid Ethereum address format", ErrValidation)
	}
	return nil
}

// Issue runs validate, duplicate check, pin, mint and persist in that order.
// A mint failure leaves a failed row behind and returns ErrMintFailure.
func (s *IssuanceService) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	req.normalize()
	if err := req.validate(); err != nil {
		metrics.IssuanceTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	run := &issuance{
		state:  StateValidated,
		logger: s.logger.With("certificateId", req.CertificateId, "student", req.StudentAddress),
	}

	exists, err := s.certificates.ExistsByCertificateId(ctx, nil, req.CertificateId)
	if err != nil {
		return nil, err
	}
	if exists {
		metrics.IssuanceTotal.WithLabelValues("duplicate").Inc()
		return nil, ErrDuplicateCertificate
	}

	student, err := s.students.EnsureExists(ctx, nil, req.StudentAddress, req.StudentName)
	if err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	issueDate := s.now()
	if req.IssueDate != nil && !req.IssueDate.IsZero() {
		issueDate = req.IssueDate.UTC()
	}

	doc := metadata.Build(metadata.Fields{
		CertificateId: req.CertificateId,
		StudentName:   req.StudentName,
		CourseName:    req.CourseName,
		Institution:   req.Institution,
		IssueDate:     issueDate,
		ExternalURL:   metadata.VerifyURL(s.cfg.PublicVerifyURL, req.CertificateId),
	})

	cid, err := s.pin(ctx, req.CertificateId, doc)
	if err != nil {
		metrics.IssuanceTotal.WithLabelValues("pin_failed").Inc()
		run.logger.Errorw("Metadata pin failed", "error", err)
		return nil, err
	}
	tokenURI := ipfs.TokenURI(cid)
	run.advance(StatePinned, "cid", cid)

	if err := s.archiver.ArchiveJSON(ctx, filestorage.MetadataObjectKey(req.CertificateId, cid), doc); err != nil {
		run.logger.Warnw("Failed to archive metadata", "error", err)
	}

	cert := &model.Certificate{
		CertificateId:  req.CertificateId,
		StudentAddress: req.StudentAddress,
		StudentName:    req.StudentName,
		CourseName:     req.CourseName,
		Institution:    req.Institution,
		TokenURI:       tokenURI,
		IpfsHash:       cid,
		IssueDate:      issueDate,
	}

	minted, err := s.chain.Mint(ctx, req.StudentAddress, tokenURI)
	if err != nil {
		run.advance(StateFailed, "error", err)
		s.compensateMintFailure(ctx, run, cert)
		metrics.IssuanceTotal.WithLabelValues("mint_failed").Inc()
		return nil, fmt.Errorf("%w: %w", ErrMintFailure, err)
	}

	if minted.TokenId <= 0 || minted.TokenId > constant.MaxSafeTokenId || minted.TxHash == "" {
		s.unpersisted(run, minted, "invalid_mint_result", nil)
		return nil, fmt.Errorf("%w: chain returned token ID %d and transaction %q", ErrMintFailure, minted.TokenId, minted.TxHash)
	}
	run.advance(StateMinted, "tokenId", minted.TokenId, "tx", minted.TxHash)

	claimed, err := s.certificates.ExistsByTokenId(ctx, nil, minted.TokenId)
	if err != nil {
		s.unpersisted(run, minted, "persist_failed", err)
		return nil, err
	}
	if claimed {
		s.unpersisted(run, minted, "token_id_conflict", ErrTokenIdConflict)
		return nil, ErrTokenIdConflict
	}

	cert.TokenId = &minted.TokenId
	cert.TransactionHash = &minted.TxHash
	cert.Status = constant.CertificateStatusMinted

	if err := s.certificates.CreateForStudent(ctx, nil, cert, student.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateTokenId):
			s.unpersisted(run, minted, "token_id_conflict", err)
			return nil, ErrTokenIdConflict
		case errors.Is(err, repository.ErrDuplicateCertificateId):
			// Another request with the same certificate ID won the insert race.
			s.unpersisted(run, minted, "duplicate", err)
			return nil, ErrDuplicateCertificate
		}
		s.unpersisted(run, minted, "persist_failed", err)
		return nil, fmt.Errorf("failed to save minted certificate: %w", err)
	}
	run.advance(StatePersisted)
	metrics.IssuanceTotal.WithLabelValues("minted").Inc()

	if student.Email != "" {
		s.notify(student, cert)
	}

	return &IssueResult{
		Certificate: cert,
		NFT: NFT{
			TokenId:         minted.TokenId,
			TransactionHash: minted.TxHash,
			IpfsHash:        cid,
		},
	}, nil
}

func (s *IssuanceService) pin(ctx context.Context, certificateId string, doc metadata.Document) (string, error) {
	cid, err := s.pinner.PinJSON(ctx, certificateId, doc)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMetadataPinFailure, err)
	}

	cid, err = ipfs.ValidateCID(cid, s.cfg.StrictCID)
	if err != nil {
		return "", fmt.Errorf("%w: invalid IPFS hash returned: %w", ErrMetadataPinFailure, err)
	}

	return cid, nil
}

// compensateMintFailure keeps the provenance of the pinned metadata as a failed row.
func (s *IssuanceService) compensateMintFailure(ctx context.Context, run *issuance, cert *model.Certificate) {
	cert.Status = constant.CertificateStatusFailed
	cert.TokenId = nil
	cert.TransactionHash = nil

	if err := s.certificates.Create(ctx, nil, cert); err != nil {
		run.logger.Errorw("Failed to record failed certificate", "error", err)
	}
}

func (s *IssuanceService) unpersisted(run *issuance, minted *chain.MintResult, kind string, cause error) {
	run.advance(StateMintedUnpersisted)
	run.logger.Errorw("Token minted on chain but not recorded locally",
		"tokenId", minted.TokenId,
		"tx", minted.TxHash,
		"kind", kind,
		"error", cause,
	)
	metrics.InconsistencyTotal.WithLabelValues(kind).Inc()
	metrics.IssuanceTotal.WithLabelValues(string(StateMintedUnpersisted)).Inc()
}

func (s *IssuanceService) notify(student *model.Student, cert *model.Certificate) {
	data := mailer.CertificateIssued{
		AppName:       util.GetAppName(),
		StudentName:   cert.StudentName,
		CourseName:    cert.CourseName,
		Institution:   cert.Institution,
		CertificateId: cert.CertificateId,
		TokenId:       *cert.TokenId,
		TokenURI:      cert.TokenURI,
		VerifyURL:     metadata.VerifyURL(s.cfg.PublicVerifyURL, cert.CertificateId),
	}

	name, email := student.Name, student.Email
	s.background(func() {
		if _, err := s.mailer.Send(mailer.CERTIFICATE_ISSUED_TEMPLATE, name, email, data); err != nil {
			s.logger.Warnw("Failed to send certificate issued mail", "certificateId", data.CertificateId, "error", err)
		}
	})
}
