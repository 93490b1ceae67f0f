package model

import (
	"errors"
	"strings"
	"time"

	"github.com/educhain/certchain/internal/constant"
	"gorm.io/gorm"
)

var ErrMintedCertificateIncomplete = errors.New("minted certificate must have token id, transaction hash and ipfs hash")

type Certificate struct {
	BaseModel
	CertificateId   string                     `gorm:"type:text;not null;uniqueIndex:idx_certificates_certificate_id" json:"certificateId"`
	StudentAddress  string                     `gorm:"type:varchar(42);not null;index" json:"studentAddress"`
	TokenId         *int64                     `gorm:"uniqueIndex:idx_certificates_token_id" json:"tokenId,omitempty"`
	StudentName     string                     `gorm:"type:text;not null" json:"studentName"`
	CourseName      string                     `gorm:"type:text;not null" json:"courseName"`
	Institution     string                     `gorm:"type:text;not null" json:"institution"`
	TokenURI        string                     `gorm:"column:token_uri;type:text;not null" json:"tokenURI"`
	IpfsHash        string                     `gorm:"type:text" json:"ipfsHash,omitempty"`
	IssueDate       time.Time                  `gorm:"type:timestamptz;not null" json:"issueDate"`
	TransactionHash *string                    `gorm:"type:text" json:"transactionHash,omitempty"`
	Status          constant.CertificateStatus `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
}

func (c Certificate) TableName() string {
	return "certificates"
}

func (c *Certificate) IsMinted() bool {
	return c.Status == constant.CertificateStatusMinted
}

// Validate checks the row invariants that must hold before it is written.
func (c *Certificate) Validate() error {
	if !c.Status.IsValid() {
		return errors.New("invalid certificate status: " + string(c.Status))
	}

	if c.IsMinted() {
		if c.TokenId == nil || *c.TokenId <= 0 || c.TransactionHash == nil || *c.TransactionHash == "" || c.IpfsHash == "" {
			return ErrMintedCertificateIncomplete
		}
	}

	return nil
}

func (c *Certificate) BeforeSave(tx *gorm.DB) error {
	c.StudentAddress = strings.ToLower(c.StudentAddress)
	if c.Status == "" {
		c.Status = constant.CertificateStatusPending
	}
	if c.IssueDate.IsZero() {
		c.IssueDate = time.Now().UTC()
	}

	return c.Validate()
}
