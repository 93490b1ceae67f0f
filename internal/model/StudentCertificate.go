package model

import "time"

// StudentCertificate is a non-owning, append-only link from a student to an issued certificate.
type StudentCertificate struct {
	StudentID     string    `gorm:"type:text;primaryKey" json:"studentId"`
	CertificateID string    `gorm:"type:text;primaryKey" json:"certificateId"`
	Position      int       `gorm:"not null" json:"position"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null" json:"createdAt"`
}

func (sc StudentCertificate) TableName() string {
	return "student_certificates"
}
