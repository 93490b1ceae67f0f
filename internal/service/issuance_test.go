package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/educhain/certchain/internal/chain"
	"github.com/educhain/certchain/internal/constant"
	"github.com/educhain/certchain/internal/mailer"
	"github.com/educhain/certchain/internal/metrics"
	"github.com/educhain/certchain/internal/model"
	"github.com/educhain/certchain/internal/repository"
	"github.com/educhain/certchain/internal/service/servicetest"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const janeAddress = "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01"

type issuanceFixture struct {
	svc          *IssuanceService
	certificates *servicetest.CertificateStore
	students     *servicetest.StudentStore
	pinner       *servicetest.Pinner
	chain        *servicetest.Chain
	mailer       *servicetest.Mailer
	archiver     *servicetest.Archiver
}

func newIssuanceFixture(t *testing.T, students ...model.Student) *issuanceFixture {
	t.Helper()

	f := &issuanceFixture{
		certificates: servicetest.NewCertificateStore(),
		students:     servicetest.NewStudentStore(students...),
		pinner:       &servicetest.Pinner{CID: "Qm123abc"},
		chain:        &servicetest.Chain{MintResult: &chain.MintResult{TokenId: 1, TxHash: "0xdead"}},
		mailer:       &servicetest.Mailer{},
		archiver:     &servicetest.Archiver{},
	}
	f.svc = NewIssuanceService(IssuanceDeps{
		Certificates: f.certificates,
		Students:     f.students,
		Pinner:       f.pinner,
		Chain:        f.chain,
		Archiver:     f.archiver,
		Mailer:       f.mailer,
	}, IssuanceConfig{PublicVerifyURL: "https://educhain.app"}, zap.NewNop().Sugar())
	f.svc.background = func(fn func()) { fn() }
	f.students.Certificates = f.certificates

	return f
}

func cert1Request() IssueRequest {
	return IssueRequest{
		CertificateId:  "CERT-1",
		StudentAddress: janeAddress,
		StudentName:    "Jane",
		CourseName:     "X101",
		Institution:    "Uni",
	}
}

func TestIssueMintsAndPersists(t *testing.T) {
	f := newIssuanceFixture(t)

	res, err := f.svc.Issue(context.Background(), cert1Request())
	require.NoError(t, err)

	assert.Equal(t, NFT{TokenId: 1, TransactionHash: "0xdead", IpfsHash: "Qm123abc"}, res.NFT)

	stored, err := f.certificates.GetByCertificateId(context.Background(), nil, "CERT-1")
	require.NoError(t, err)
	assert.Equal(t, constant.CertificateStatusMinted, stored.Status)
	assert.Equal(t, "ipfs://Qm123abc", stored.TokenURI)
	assert.Equal(t, "Qm123abc", stored.IpfsHash)
	require.NotNil(t, stored.TokenId)
	assert.Equal(t, int64(1), *stored.TokenId)
	require.NotNil(t, stored.TransactionHash)
	assert.Equal(t, "0xdead", *stored.TransactionHash)
	assert.Equal(t, "0xabcdef0123456789abcdef0123456789abcdef01", stored.StudentAddress)
	assert.False(t, stored.IssueDate.IsZero())

	require.Len(t, f.chain.Mints, 1)
	assert.Equal(t, servicetest.MintCall{Student: "0xabcdef0123456789abcdef0123456789abcdef01", TokenURI: "ipfs://Qm123abc"}, f.chain.Mints[0])

	student, err := f.students.GetByAddressWithCertificates(context.Background(), nil, janeAddress)
	require.NoError(t, err)
	assert.Equal(t, "Jane", student.Name)
	assert.Equal(t, []string{stored.ID}, f.certificates.Links[student.ID])

	assert.Equal(t, []string{"certificates/CERT-1/Qm123abc.json"}, f.archiver.Keys)
	assert.Empty(t, f.mailer.Sent, "student without email is not mailed")
}

func TestIssueKeepsGivenIssueDate(t *testing.T) {
	f := newIssuanceFixture(t)
	issued := time.Date(2023, 6, 30, 12, 0, 0, 0, time.FixedZone("ICT", 7*3600))

	req := cert1Request()
	req.IssueDate = &issued
	res, err := f.svc.Issue(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Certificate.IssueDate.Equal(issued))
	assert.Equal(t, time.UTC, res.Certificate.IssueDate.Location())
}

func TestIssueTwiceIsDuplicate(t *testing.T) {
	f := newIssuanceFixture(t)

	_, err := f.svc.Issue(context.Background(), cert1Request())
	require.NoError(t, err)

	f.chain.MintResult = &chain.MintResult{TokenId: 2, TxHash: "0xbeef"}
	_, err = f.svc.Issue(context.Background(), cert1Request())
	assert.ErrorIs(t, err, ErrDuplicateCertificate)

	assert.Equal(t, 1, f.pinner.Calls)
	assert.Len(t, f.chain.Mints, 1)
}

func TestIssueMintFailureRecordsFailedRow(t *testing.T) {
	f := newIssuanceFixture(t)
	f.chain.MintErr = errors.New("execution reverted")

	_, err := f.svc.Issue(context.Background(), cert1Request())
	assert.ErrorIs(t, err, ErrMintFailure)
	assert.ErrorContains(t, err, "execution reverted")

	stored, err := f.certificates.GetByCertificateId(context.Background(), nil, "CERT-1")
	require.NoError(t, err)
	assert.Equal(t, constant.CertificateStatusFailed, stored.Status)
	assert.Nil(t, stored.TokenId)
	assert.Nil(t, stored.TransactionHash)
	assert.Equal(t, "ipfs://Qm123abc", stored.TokenURI)
	assert.Equal(t, "Qm123abc", stored.IpfsHash)

	// The failed row is not linked to the student.
	assert.Empty(t, f.certificates.Links)
}

func TestIssueWithoutChainIsMintFailure(t *testing.T) {
	f := newIssuanceFixture(t)
	f.svc.chain = chain.Disabled{Reason: "RPC_URL or CONTRACT_ADDRESS not set"}

	_, err := f.svc.Issue(context.Background(), cert1Request())
	assert.ErrorIs(t, err, ErrMintFailure)
	assert.ErrorIs(t, err, chain.ErrChainUnavailable)
}

func TestIssuePinFailurePersistsNothing(t *testing.T) {
	tests := []struct {
		name string
		cid  string
		err  error
	}{
		{"client error", "", errors.New("pinata credentials not configured")},
		{"empty cid", "", nil},
		{"malformed cid", "Qm 123/abc", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIssuanceFixture(t)
			f.pinner.CID, f.pinner.Err = tt.cid, tt.err

			_, err := f.svc.Issue(context.Background(), cert1Request())
			assert.ErrorIs(t, err, ErrMetadataPinFailure)
			assert.Empty(t, f.certificates.Rows)
			assert.Empty(t, f.chain.Mints)
		})
	}
}

func TestIssueTokenIdConflict(t *testing.T) {
	f := newIssuanceFixture(t)
	_, err := f.svc.Issue(context.Background(), cert1Request())
	require.NoError(t, err)

	// The chain hands out token 1 again for another certificate.
	req := cert1Request()
	req.CertificateId = "CERT-2"
	_, err = f.svc.Issue(context.Background(), req)
	assert.ErrorIs(t, err, ErrTokenIdConflict)

	_, err = f.certificates.GetByCertificateId(context.Background(), nil, "CERT-2")
	assert.Error(t, err, "conflicting certificate must not be stored")
}

func TestIssueLostCertificateIdRaceIsDuplicate(t *testing.T) {
	f := newIssuanceFixture(t)
	core, logs := observer.New(zapcore.ErrorLevel)
	f.svc.logger = zap.New(core).Sugar()

	// A concurrent request with the same certificate ID inserted first.
	f.certificates.CreateForStudentErr = repository.ErrDuplicateCertificateId
	inconsistent := testutil.ToFloat64(metrics.InconsistencyTotal.WithLabelValues("duplicate"))
	unpersisted := testutil.ToFloat64(metrics.IssuanceTotal.WithLabelValues(string(StateMintedUnpersisted)))

	_, err := f.svc.Issue(context.Background(), cert1Request())
	assert.ErrorIs(t, err, ErrDuplicateCertificate)
	assert.Len(t, f.chain.Mints, 1)
	assert.Empty(t, f.certificates.Rows)
	assert.Empty(t, f.mailer.Sent)

	assert.Equal(t, inconsistent+1, testutil.ToFloat64(metrics.InconsistencyTotal.WithLabelValues("duplicate")))
	assert.Equal(t, unpersisted+1, testutil.ToFloat64(metrics.IssuanceTotal.WithLabelValues(string(StateMintedUnpersisted))))

	entries := logs.FilterMessage("Token minted on chain but not recorded locally").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "duplicate", fields["kind"])
	assert.Equal(t, int64(1), fields["tokenId"])
	assert.Equal(t, "CERT-1", fields["certificateId"])
}

func TestIssueLinksCertificatesInIssueOrder(t *testing.T) {
	f := newIssuanceFixture(t)

	for i, id := range []string{"CERT-B", "CERT-A", "CERT-C"} {
		f.chain.MintResult = &chain.MintResult{TokenId: int64(i + 1), TxHash: "0xdead"}
		req := cert1Request()
		req.CertificateId = id
		_, err := f.svc.Issue(context.Background(), req)
		require.NoError(t, err)
	}

	student, err := f.students.GetByAddressWithCertificates(context.Background(), nil, janeAddress)
	require.NoError(t, err)
	require.Len(t, student.Certificates, 3)
	assert.Equal(t, "CERT-B", student.Certificates[0].CertificateId)
	assert.Equal(t, "CERT-A", student.Certificates[1].CertificateId)
	assert.Equal(t, "CERT-C", student.Certificates[2].CertificateId)
}

func TestIssueKeepsBase58CIDv1(t *testing.T) {
	f := newIssuanceFixture(t)
	f.pinner.CID = "z4EBG9j39DX8pJ5CjucFtnPRYvvKgDPPZ522KvJGCLJ9cB7AFwh"

	res, err := f.svc.Issue(context.Background(), cert1Request())
	require.NoError(t, err)
	assert.Equal(t, f.pinner.CID, res.NFT.IpfsHash)
	assert.Equal(t, "ipfs://"+f.pinner.CID, res.Certificate.TokenURI)
	require.Len(t, f.chain.Mints, 1)
	assert.Equal(t, "ipfs://"+f.pinner.CID, f.chain.Mints[0].TokenURI)
}

func TestIssueRejectsInvalidMintResult(t *testing.T) {
	tests := []chain.MintResult{
		{TokenId: 0, TxHash: "0xdead"},
		{TokenId: -3, TxHash: "0xdead"},
		{TokenId: 1, TxHash: ""},
		{TokenId: constant.MaxSafeTokenId + 1, TxHash: "0xdead"},
	}

	for _, res := range tests {
		f := newIssuanceFixture(t)
		f.chain.MintResult = &res

		_, err := f.svc.Issue(context.Background(), cert1Request())
		assert.ErrorIs(t, err, ErrMintFailure)
		assert.Empty(t, f.certificates.Rows)
	}
}

func TestIssueValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*IssueRequest)
	}{
		{"missing certificate id", func(r *IssueRequest) { r.CertificateId = "  " }},
		{"missing student name", func(r *IssueRequest) { r.StudentName = "" }},
		{"missing course", func(r *IssueRequest) { r.CourseName = "" }},
		{"missing institution", func(r *IssueRequest) { r.Institution = "" }},
		{"short address", func(r *IssueRequest) { r.StudentAddress = "0xabc" }},
		{"address without prefix", func(r *IssueRequest) { r.StudentAddress = "abcdef0123456789abcdef0123456789abcdef0123" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIssuanceFixture(t)
			req := cert1Request()
			tt.mutate(&req)

			_, err := f.svc.Issue(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, f.pinner.Calls)
		})
	}
}

func TestIssueDoesNotRenameExistingStudent(t *testing.T) {
	f := newIssuanceFixture(t, model.Student{Address: janeAddress, Name: "Jane Doe", Email: "jane@example.com"})

	_, err := f.svc.Issue(context.Background(), cert1Request())
	require.NoError(t, err)

	student, err := f.students.GetByAddressWithCertificates(context.Background(), nil, janeAddress)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", student.Name)

	require.Len(t, f.mailer.Sent, 1)
	sent := f.mailer.Sent[0]
	assert.Equal(t, mailer.CERTIFICATE_ISSUED_TEMPLATE, sent.Template)
	assert.Equal(t, "jane@example.com", sent.Email)
	data, ok := sent.Data.(mailer.CertificateIssued)
	require.True(t, ok)
	assert.Equal(t, int64(1), data.TokenId)
	assert.Equal(t, "https://educhain.app/verify/CERT-1", data.VerifyURL)
}

func TestIssueArchiveFailureIsNotFatal(t *testing.T) {
	f := newIssuanceFixture(t)
	f.archiver.Err = errors.New("bucket unreachable")

	_, err := f.svc.Issue(context.Background(), cert1Request())
	assert.NoError(t, err)
}

func TestMintedRowsAlwaysComplete(t *testing.T) {
	f := newIssuanceFixture(t)

	for i, outcome := range []error{nil, errors.New("reverted"), nil, nil, errors.New("timeout")} {
		req := cert1Request()
		req.CertificateId = "CERT-" + string(rune('A'+i))
		f.chain.MintResult = &chain.MintResult{TokenId: int64(i + 1), TxHash: "0xtx"}
		f.chain.MintErr = outcome
		_, _ = f.svc.Issue(context.Background(), req)
	}

	var minted int
	for _, row := range f.certificates.Rows {
		if row.Status != constant.CertificateStatusMinted {
			continue
		}
		minted++
		assert.NotNil(t, row.TokenId)
		assert.NotNil(t, row.TransactionHash)
		assert.NotEmpty(t, row.IpfsHash)
	}
	assert.Equal(t, 3, minted)
	assert.Len(t, f.certificates.Rows, 5)
}
