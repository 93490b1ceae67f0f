package service

import (
	"context"

	"github.com/educhain/certchain/internal/constant"
	"github.com/educhain/certchain/internal/model"
	"github.com/educhain/certchain/internal/repository"
	"gorm.io/gorm"
)

// CertificateStore is satisfied by *repository.CertificateRepository.
type CertificateStore interface {
	Create(ctx context.Context, tx *gorm.DB, ca *model.Certificate) error
	CreateForStudent(ctx context.Context, tx *gorm.DB, ca *model.Certificate, studentId string) error
	GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Certificate, error)
	GetByCertificateId(ctx context.Context, tx *gorm.DB, certificateId string) (*model.Certificate, error)
	GetByTokenId(ctx context.Context, tx *gorm.DB, tokenId int64) (*model.Certificate, error)
	ExistsByCertificateId(ctx context.Context, tx *gorm.DB, certificateId string) (bool, error)
	ExistsByTokenId(ctx context.Context, tx *gorm.DB, tokenId int64) (bool, error)
	List(ctx context.Context, tx *gorm.DB, filter repository.CertificateFilter) ([]model.Certificate, error)
	CountByStatus(ctx context.Context, tx *gorm.DB) (map[constant.CertificateStatus]int64, error)
}

// StudentStore is satisfied by *repository.StudentRepository.
type StudentStore interface {
	GetByAddressWithCertificates(ctx context.Context, tx *gorm.DB, address string) (*model.Student, error)
	List(ctx context.Context, tx *gorm.DB, limit int) ([]model.Student, error)
	EnsureExists(ctx context.Context, tx *gorm.DB, address, name string) (*model.Student, error)
	Upsert(ctx context.Context, tx *gorm.DB, address, name, email string) (*model.Student, bool, error)
}
