package model

import (
	"strings"

	"gorm.io/gorm"
)

type Student struct {
	BaseModel
	Address string `gorm:"type:varchar(42);not null;uniqueIndex:idx_students_address" json:"address"`
	Name    string `gorm:"type:text;not null" json:"name"`
	Email   string `gorm:"type:text" json:"email,omitempty"`

	// Populated from student_certificates in link order, never written through the association.
	Certificates []Certificate `gorm:"-" json:"certificates"`
}

func (s Student) TableName() string {
	return "students"
}

func (s *Student) BeforeSave(tx *gorm.DB) error {
	s.Address = strings.ToLower(s.Address)
	s.Email = strings.ToLower(s.Email)
	return nil
}
