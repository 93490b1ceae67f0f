package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/educhain/certchain/internal/model"
	"github.com/educhain/certchain/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UpsertStudentRequest struct {
	Address string
	Name    string
	Email   string
}

type StudentService struct {
	students StudentStore
	logger   *zap.SugaredLogger
}

func NewStudentService(students StudentStore, logger *zap.SugaredLogger) *StudentService {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("")
	}

	return &StudentService{students: students, logger: logger}
}

func (s *StudentService) List(ctx context.Context, limit int) ([]model.Student, error) {
	return s.students.List(ctx, nil, normalizeLimit(limit))
}

func (s *StudentService) GetByAddress(ctx context.Context, address string) (*model.Student, error) {
	student, err := s.students.GetByAddressWithCertificates(ctx, nil, strings.ToLower(strings.TrimSpace(address)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: student not found", ErrNotFound)
	}
	return student, err
}

// Upsert creates the student or renames it, email is only overwritten when given.
// Return student, created, error
func (s *StudentService) Upsert(ctx context.Context, req UpsertStudentRequest) (*model.Student, bool, error) {
	address := strings.ToLower(strings.TrimSpace(req.Address))
	name := strings.TrimSpace(req.Name)
	if address == "" || name == "" {
		return nil, false, fmt.Errorf("%w: address and name are required", ErrValidation)
	}
	if !IsAddress(address) {
		return nil, false, fmt.Errorf("%w: invalid Ethereum address format", ErrValidation)
	}

	return s.students.Upsert(ctx, nil, address, name, strings.TrimSpace(req.Email))
}
