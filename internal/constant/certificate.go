package constant

type CertificateStatus string

const (
	CertificateStatusPending CertificateStatus = "pending"
	CertificateStatusMinted  CertificateStatus = "minted"
	CertificateStatusFailed  CertificateStatus = "failed"
)

func (s CertificateStatus) IsValid() bool {
	switch s {
	case CertificateStatusPending, CertificateStatusMinted, CertificateStatusFailed:
		return true
	}
	return false
}

var CertificateStatuses = []CertificateStatus{
	CertificateStatusPending,
	CertificateStatusMinted,
	CertificateStatusFailed,
}

// Largest integer a JSON number can carry without precision loss (2^53 - 1).
const MaxSafeTokenId int64 = 1<<53 - 1
