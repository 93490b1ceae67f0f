package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrDuplicateCertificateId = errors.New("certificate id already exists")
	ErrDuplicateTokenId       = errors.New("token id already claimed by another certificate")
	ErrDuplicateStudent       = errors.New("student address already exists")
)

const (
	pgUniqueViolation = "23505"

	constraintCertificateId = "idx_certificates_certificate_id"
	constraintTokenId       = "idx_certificates_token_id"
	constraintStudentAddr   = "idx_students_address"
)

type baseRepository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

type Repository struct {
	// DB can be used for transaction. Example usage:
	// tx := r.DB.Begin()
	// defer tx.Commit()
	// Then pass tx to the repository function. and use tx.Rollback() if error occurred
	DB          *gorm.DB
	Certificate *CertificateRepository
	Student     *StudentRepository
}

func newBaseRepository(db *gorm.DB, logger *zap.SugaredLogger) *baseRepository {
	return &baseRepository{db: db, logger: logger}
}

func NewRepository(db *gorm.DB, logger *zap.SugaredLogger) *Repository {
	br := newBaseRepository(db, logger)
	_studentRepo := &StudentRepository{baseRepository: br}

	return &Repository{
		DB:          db,
		Certificate: &CertificateRepository{baseRepository: br, student: _studentRepo},
		Student:     _studentRepo,
	}
}

// Docs: https://gorm.io/docs/transactions.html
func (b baseRepository) withTx(db *gorm.DB, fn func(*gorm.DB) error) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})

	if err != nil {
		b.logger.Errorf("withTx Transaction error: %v", err)
	}

	return err
}

func (b baseRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}

	return b.db
}

// translateError maps unique index violations to the repository's sentinel errors.
// Any other error is returned untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}

	switch pgErr.ConstraintName {
	case constraintCertificateId:
		return errors.Join(ErrDuplicateCertificateId, err)
	case constraintTokenId:
		return errors.Join(ErrDuplicateTokenId, err)
	case constraintStudentAddr:
		return errors.Join(ErrDuplicateStudent, err)
	}

	return err
}
