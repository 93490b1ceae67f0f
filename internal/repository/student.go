package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/educhain/certchain/internal/constant"
	"github.com/educhain/certchain/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentRepository struct {
	*baseRepository
}

func (sr StudentRepository) GetByAddress(ctx context.Context, tx *gorm.DB, address string) (*model.Student, error) {
	sr.logger.Debugf("Get student by address: %s", address)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var student model.Student
	if err := db.WithContext(ctx).Model(&model.Student{}).Where("address = ?", strings.ToLower(address)).First(&student).Error; err != nil {
		return nil, err
	}

	return &student, nil
}

// GetByAddressWithCertificates also loads the student's certificates in link order.
func (sr StudentRepository) GetByAddressWithCertificates(ctx context.Context, tx *gorm.DB, address string) (*model.Student, error) {
	student, err := sr.GetByAddress(ctx, tx, address)
	if err != nil {
		return nil, err
	}

	students := []model.Student{*student}
	if err := sr.loadCertificates(ctx, tx, students); err != nil {
		return nil, err
	}

	return &students[0], nil
}

// List returns students newest first with their certificates populated.
func (sr StudentRepository) List(ctx context.Context, tx *gorm.DB, limit int) ([]model.Student, error) {
	sr.logger.Debugf("List students, limit: %d", limit)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if limit <= 0 || limit > constant.MaxListLimit {
		limit = constant.DefaultListLimit
	}

	students := []model.Student{}
	if err := db.WithContext(ctx).Model(&model.Student{}).Order("created_at desc").Limit(limit).Find(&students).Error; err != nil {
		return students, err
	}

	if err := sr.loadCertificates(ctx, tx, students); err != nil {
		return students, err
	}

	return students, nil
}

type linkedCertificate struct {
	model.Certificate
	LinkStudentID string `gorm:"column:link_student_id"`
}

func (sr StudentRepository) loadCertificates(ctx context.Context, tx *gorm.DB, students []model.Student) error {
	if len(students) == 0 {
		return nil
	}

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	ids := make([]string, len(students))
	index := make(map[string]int, len(students))
	for i := range students {
		ids[i] = students[i].ID
		index[students[i].ID] = i
		students[i].Certificates = []model.Certificate{}
	}

	var rows []linkedCertificate
	if err := db.WithContext(ctx).
		Table("certificates").
		Select("certificates.*, student_certificates.student_id AS link_student_id").
		Joins("JOIN student_certificates ON student_certificates.certificate_id = certificates.id").
		Where("student_certificates.student_id IN ?", ids).
		Order("student_certificates.student_id, student_certificates.position asc").
		Scan(&rows).Error; err != nil {
		return err
	}

	for _, r := range rows {
		i, ok := index[r.LinkStudentID]
		if !ok {
			continue
		}
		students[i].Certificates = append(students[i].Certificates, r.Certificate)
	}

	return nil
}

func (sr StudentRepository) Create(ctx context.Context, tx *gorm.DB, student *model.Student) error {
	sr.logger.Debugf("Create student with data: %v", student)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.Student{}).Create(student).Error; err != nil {
		return translateError(err)
	}

	return nil
}

// EnsureExists returns the student for address, creating it with name if absent.
// An existing student is never renamed.
func (sr StudentRepository) EnsureExists(ctx context.Context, tx *gorm.DB, address, name string) (*model.Student, error) {
	existing, err := sr.GetByAddress(ctx, tx, address)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	student := &model.Student{Address: strings.ToLower(address), Name: name}
	if err := sr.Create(ctx, tx, student); err != nil {
		// Lost a creation race with another request, the row exists now.
		if errors.Is(err, ErrDuplicateStudent) {
			return sr.GetByAddress(ctx, tx, address)
		}
		return nil, err
	}

	return student, nil
}

// Upsert creates the student or updates name (and email when given) in place.
// Return student, created, error
func (sr StudentRepository) Upsert(ctx context.Context, tx *gorm.DB, address, name, email string) (*model.Student, bool, error) {
	student, created, err := sr.upsert(ctx, tx, address, name, email)
	if errors.Is(err, ErrDuplicateStudent) {
		// Lost a first time creation race, the winner's row is there to update now.
		sr.logger.Debugf("Student %s created concurrently, retrying as update", address)
		return sr.upsert(ctx, tx, address, name, email)
	}

	return student, created, err
}

func (sr StudentRepository) upsert(ctx context.Context, tx *gorm.DB, address, name, email string) (*model.Student, bool, error) {
	sr.logger.Debugf("Upsert student: %s (Transaction)", address)

	var (
		student *model.Student
		created bool
	)

	db := sr.getDB(tx)
	txErr := sr.withTx(db, func(tx *gorm.DB) error {
		existing, err := sr.GetByAddress(ctx, tx, address)
		if err != nil {
			// Since not found is not an error, we can ignore it
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if existing == nil {
			student = &model.Student{Address: strings.ToLower(address), Name: name, Email: email}
			created = true
			return sr.Create(ctx, tx, student)
		}

		existing.Name = name
		if email != "" {
			existing.Email = email
		}

		ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
		defer cancel()

		if err := tx.WithContext(ctx).Save(existing).Error; err != nil {
			return err
		}

		student = existing
		return nil
	})
	if txErr != nil {
		return nil, false, txErr
	}

	return student, created, nil
}

// AppendCertificate adds a link at the end of the student's certificate list.
// Must run inside a transaction so the row lock serialises concurrent appends.
func (sr StudentRepository) AppendCertificate(ctx context.Context, tx *gorm.DB, studentId, certificateId string) error {
	sr.logger.Debugf("Append certificate %s to student %s", certificateId, studentId)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var student model.Student
	if err := db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", studentId).First(&student).Error; err != nil {
		return err
	}

	var position int64
	if err := db.WithContext(ctx).Model(&model.StudentCertificate{}).Where("student_id = ?", studentId).Count(&position).Error; err != nil {
		return err
	}

	return db.WithContext(ctx).Create(&model.StudentCertificate{
		StudentID:     studentId,
		CertificateID: certificateId,
		Position:      int(position),
	}).Error
}
