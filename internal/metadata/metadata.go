// Package metadata builds the ERC-721 style metadata document pinned for every certificate.
package metadata

import (
	"fmt"
	"time"
)

type Fields struct {
	CertificateId string
	StudentName   string
	CourseName    string
	Institution   string
	IssueDate     time.Time
	// Optional CID of a rendered certificate image.
	ImageHash string
	// Optional public page for the certificate.
	ExternalURL string
}

type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

type Document struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes"`
	ExternalURL string      `json:"external_url"`
}

const (
	TraitStudentName   = "Student Name"
	TraitCourse        = "Course"
	TraitInstitution   = "Institution"
	TraitIssueDate     = "Issue Date"
	TraitCertificateId = "Certificate ID"
)

// Build is pure: the same fields always produce the same document.
func Build(f Fields) Document {
	image := ""
	if f.ImageHash != "" {
		image = "ipfs://" + f.ImageHash
	}

	return Document{
		Name:        fmt.Sprintf("%s - %s", f.CourseName, f.Institution),
		Description: fmt.Sprintf("Academic certificate issued to %s for completing %s at %s", f.StudentName, f.CourseName, f.Institution),
		Image:       image,
		Attributes: []Attribute{
			{TraitType: TraitStudentName, Value: f.StudentName},
			{TraitType: TraitCourse, Value: f.CourseName},
			{TraitType: TraitInstitution, Value: f.Institution},
			{TraitType: TraitIssueDate, Value: f.IssueDate.UTC().Format(time.RFC3339)},
			{TraitType: TraitCertificateId, Value: f.CertificateId},
		},
		ExternalURL: f.ExternalURL,
	}
}

// VerifyURL returns "<base>/verify/<certificateId>", or "" when base is not configured.
func VerifyURL(base, certificateId string) string {
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/verify/%s", base, certificateId)
}
