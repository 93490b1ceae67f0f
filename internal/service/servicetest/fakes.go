// Package servicetest provides in-memory stores and clients for exercising the service layer.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/educhain/certchain/internal/chain"
	"github.com/educhain/certchain/internal/constant"
	"github.com/educhain/certchain/internal/model"
	"github.com/educhain/certchain/internal/repository"
	"gorm.io/gorm"
)

type CertificateStore struct {
	mu         sync.Mutex
	Rows       []*model.Certificate
	Links      map[string][]string
	LastFilter repository.CertificateFilter
	clock      time.Time

	// CreateForStudentErr fails the next CreateForStudent without storing anything,
	// the way a lost insert race rolls back the transaction.
	CreateForStudentErr error
}

func NewCertificateStore() *CertificateStore {
	return &CertificateStore{
		Links: map[string][]string{},
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *CertificateStore) Create(ctx context.Context, tx *gorm.DB, ca *model.Certificate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.create(ca)
}

func (f *CertificateStore) create(ca *model.Certificate) error {
	if err := ca.BeforeSave(nil); err != nil {
		return err
	}
	for _, r := range f.Rows {
		if r.CertificateId == ca.CertificateId {
			return repository.ErrDuplicateCertificateId
		}
		if r.TokenId != nil && ca.TokenId != nil && *r.TokenId == *ca.TokenId {
			return repository.ErrDuplicateTokenId
		}
	}
	if err := ca.BaseModel.BeforeCreate(nil); err != nil {
		return err
	}

	f.clock = f.clock.Add(time.Second)
	ca.CreatedAt, ca.UpdatedAt = f.clock, f.clock

	row := *ca
	f.Rows = append(f.Rows, &row)
	return nil
}

func (f *CertificateStore) CreateForStudent(ctx context.Context, tx *gorm.DB, ca *model.Certificate, studentId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.CreateForStudentErr; err != nil {
		f.CreateForStudentErr = nil
		return err
	}
	if err := f.create(ca); err != nil {
		return err
	}
	f.Links[studentId] = append(f.Links[studentId], ca.ID)
	return nil
}

func (f *CertificateStore) find(match func(*model.Certificate) bool) (*model.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.Rows {
		if match(r) {
			row := *r
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *CertificateStore) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Certificate, error) {
	return f.find(func(c *model.Certificate) bool { return c.ID == id })
}

func (f *CertificateStore) GetByCertificateId(ctx context.Context, tx *gorm.DB, certificateId string) (*model.Certificate, error) {
	return f.find(func(c *model.Certificate) bool { return c.CertificateId == certificateId })
}

func (f *CertificateStore) GetByTokenId(ctx context.Context, tx *gorm.DB, tokenId int64) (*model.Certificate, error) {
	return f.find(func(c *model.Certificate) bool { return c.TokenId != nil && *c.TokenId == tokenId })
}

func (f *CertificateStore) ExistsByCertificateId(ctx context.Context, tx *gorm.DB, certificateId string) (bool, error) {
	_, err := f.GetByCertificateId(ctx, tx, certificateId)
	return err == nil, nil
}

func (f *CertificateStore) ExistsByTokenId(ctx context.Context, tx *gorm.DB, tokenId int64) (bool, error) {
	_, err := f.GetByTokenId(ctx, tx, tokenId)
	return err == nil, nil
}

func (f *CertificateStore) List(ctx context.Context, tx *gorm.DB, filter repository.CertificateFilter) ([]model.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastFilter = filter

	out := []model.Certificate{}
	for _, r := range f.Rows {
		if filter.StudentAddress != "" && r.StudentAddress != strings.ToLower(filter.StudentAddress) {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *CertificateStore) CountByStatus(ctx context.Context, tx *gorm.DB) (map[constant.CertificateStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[constant.CertificateStatus]int64{}
	for _, r := range f.Rows {
		counts[r.Status]++
	}
	return counts, nil
}

type StudentStore struct {
	mu       sync.Mutex
	Students map[string]*model.Student

	// Certificates, when set, backs GetByAddressWithCertificates with its links.
	Certificates *CertificateStore
}

func NewStudentStore(seed ...model.Student) *StudentStore {
	f := &StudentStore{Students: map[string]*model.Student{}}
	for i := range seed {
		s := seed[i]
		_ = s.BeforeSave(nil)
		_ = s.BaseModel.BeforeCreate(nil)
		f.Students[s.Address] = &s
	}
	return f
}

func (f *StudentStore) GetByAddressWithCertificates(ctx context.Context, tx *gorm.DB, address string) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.Students[strings.ToLower(address)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *s
	out.Certificates = []model.Certificate{}
	if f.Certificates == nil {
		return &out, nil
	}

	f.Certificates.mu.Lock()
	defer f.Certificates.mu.Unlock()
	for _, id := range f.Certificates.Links[out.ID] {
		for _, r := range f.Certificates.Rows {
			if r.ID == id {
				out.Certificates = append(out.Certificates, *r)
			}
		}
	}
	return &out, nil
}

func (f *StudentStore) List(ctx context.Context, tx *gorm.DB, limit int) ([]model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Student{}
	for _, s := range f.Students {
		out = append(out, *s)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *StudentStore) EnsureExists(ctx context.Context, tx *gorm.DB, address, name string) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	address = strings.ToLower(address)
	if s, ok := f.Students[address]; ok {
		out := *s
		return &out, nil
	}
	s := &model.Student{Address: address, Name: name}
	_ = s.BaseModel.BeforeCreate(nil)
	f.Students[address] = s
	out := *s
	return &out, nil
}

func (f *StudentStore) Upsert(ctx context.Context, tx *gorm.DB, address, name, email string) (*model.Student, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	address = strings.ToLower(address)
	s, ok := f.Students[address]
	if !ok {
		s = &model.Student{Address: address, Name: name, Email: email}
		_ = s.BaseModel.BeforeCreate(nil)
		f.Students[address] = s
		out := *s
		return &out, true, nil
	}
	s.Name = name
	if email != "" {
		s.Email = email
	}
	out := *s
	return &out, false, nil
}

type Pinner struct {
	CID   string
	Err   error
	Calls int
	Names []string
}

func (f *Pinner) PinJSON(ctx context.Context, name string, doc any) (string, error) {
	f.Calls++
	f.Names = append(f.Names, name)
	return f.CID, f.Err
}

type MintCall struct {
	Student  string
	TokenURI string
}

type Chain struct {
	MintResult   *chain.MintResult
	MintErr      error
	VerifyResult *chain.VerifyResult
	VerifyErr    error
	Mints        []MintCall
}

func (f *Chain) Mint(ctx context.Context, student, tokenURI string) (*chain.MintResult, error) {
	f.Mints = append(f.Mints, MintCall{student, tokenURI})
	if f.MintErr != nil {
		return nil, f.MintErr
	}
	res := *f.MintResult
	return &res, nil
}

func (f *Chain) Verify(ctx context.Context, tokenId int64) (*chain.VerifyResult, error) {
	if f.VerifyErr != nil {
		return nil, f.VerifyErr
	}
	res := *f.VerifyResult
	return &res, nil
}

func (f *Chain) Info(ctx context.Context) (*chain.Info, error) {
	return &chain.Info{Enabled: true, ContractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3", TotalSupply: int64(len(f.Mints))}, nil
}

type SentMail struct {
	Template string
	Name     string
	Email    string
	Data     any
}

type Mailer struct {
	Sent []SentMail
}

func (f *Mailer) Send(templateFile, toUsername, toEmail string, data any) (int, error) {
	f.Sent = append(f.Sent, SentMail{templateFile, toUsername, toEmail, data})
	return 202, nil
}

type Archiver struct {
	Keys []string
	Err  error
}

func (f *Archiver) ArchiveJSON(ctx context.Context, key string, doc any) error {
	f.Keys = append(f.Keys, key)
	return f.Err
}
