package repository

import (
	"context"
	"strings"

	"github.com/educhain/certchain/internal/constant"
	"github.com/educhain/certchain/internal/model"
	"gorm.io/gorm"
)

type CertificateRepository struct {
	*baseRepository
	student *StudentRepository
}

type CertificateFilter struct {
	StudentAddress string
	Status         constant.CertificateStatus
	Limit          int
}

func (cr CertificateRepository) Create(ctx context.Context, tx *gorm.DB, ca *model.Certificate) error {
	cr.logger.Debugf("Create certificate: %s, status: %s", ca.CertificateId, ca.Status)

	db := cr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.Certificate{}).Create(ca).Error; err != nil {
		return translateError(err)
	}

	return nil
}

// CreateForStudent inserts the certificate and appends it to the student's list in one transaction.
func (cr CertificateRepository) CreateForStudent(ctx context.Context, tx *gorm.DB, ca *model.Certificate, studentId string) error {
	cr.logger.Debugf("Create certificate %s for student %s (Transaction)", ca.CertificateId, studentId)

	db := cr.getDB(tx)
	return cr.withTx(db, func(tx *gorm.DB) error {
		if err := cr.Create(ctx, tx, ca); err != nil {
			return err
		}

		return cr.student.AppendCertificate(ctx, tx, studentId, ca.ID)
	})
}

func (cr CertificateRepository) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Certificate, error) {
	cr.logger.Debugf("Get certificate by id: %s", id)

	return cr.first(ctx, tx, "id = ?", id)
}

func (cr CertificateRepository) GetByCertificateId(ctx context.Context, tx *gorm.DB, certificateId string) (*model.Certificate, error) {
	cr.logger.Debugf("Get certificate by certificate id: %s", certificateId)

	return cr.first(ctx, tx, "certificate_id = ?", certificateId)
}

func (cr CertificateRepository) GetByTokenId(ctx context.Context, tx *gorm.DB, tokenId int64) (*model.Certificate, error) {
	cr.logger.Debugf("Get certificate by token id: %d", tokenId)

	return cr.first(ctx, tx, "token_id = ?", tokenId)
}

func (cr CertificateRepository) first(ctx context.Context, tx *gorm.DB, query string, arg any) (*model.Certificate, error) {
	db := cr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var certificate model.Certificate
	if err := db.WithContext(ctx).Model(&model.Certificate{}).Where(query, arg).First(&certificate).Error; err != nil {
		return nil, err
	}

	return &certificate, nil
}

func (cr CertificateRepository) ExistsByCertificateId(ctx context.Context, tx *gorm.DB, certificateId string) (bool, error) {
	return cr.exists(ctx, tx, "certificate_id = ?", certificateId)
}

func (cr CertificateRepository) ExistsByTokenId(ctx context.Context, tx *gorm.DB, tokenId int64) (bool, error) {
	return cr.exists(ctx, tx, "token_id = ?", tokenId)
}

func (cr CertificateRepository) exists(ctx context.Context, tx *gorm.DB, query string, arg any) (bool, error) {
	db := cr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var count int64
	if err := db.WithContext(ctx).Model(&model.Certificate{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// List returns certificates newest first. The caller is expected to pass a normalized limit.
func (cr CertificateRepository) List(ctx context.Context, tx *gorm.DB, filter CertificateFilter) ([]model.Certificate, error) {
	cr.logger.Debugf("List certificates with filter: %+v", filter)

	db := cr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	query := db.WithContext(ctx).Model(&model.Certificate{})
	if filter.StudentAddress != "" {
		query = query.Where("student_address = ?", strings.ToLower(filter.StudentAddress))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	limit := filter.Limit
	if limit <= 0 || limit > constant.MaxListLimit {
		limit = constant.DefaultListLimit
	}

	certificates := []model.Certificate{}
	if err := query.Order("created_at desc").Limit(limit).Find(&certificates).Error; err != nil {
		return certificates, err
	}

	return certificates, nil
}

type statusCount struct {
	Status constant.CertificateStatus
	Total  int64
}

func (cr CertificateRepository) CountByStatus(ctx context.Context, tx *gorm.DB) (map[constant.CertificateStatus]int64, error) {
	db := cr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var rows []statusCount
	if err := db.WithContext(ctx).Model(&model.Certificate{}).Select("status, count(*) as total").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[constant.CertificateStatus]int64, len(constant.CertificateStatuses))
	for _, s := range constant.CertificateStatuses {
		counts[s] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Total
	}

	return counts, nil
}
