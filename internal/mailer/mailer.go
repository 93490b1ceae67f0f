package mailer

import (
	"bytes"
	"embed"
	"html/template"
)

const (
	MAX_RETRY                   = 3
	CERTIFICATE_ISSUED_TEMPLATE = "certificate_issued.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, toUsername, toEmail string, data any) (int, error)
}

// CertificateIssued is the data rendered by certificate_issued.tmpl.
type CertificateIssued struct {
	AppName       string
	StudentName   string
	CourseName    string
	Institution   string
	CertificateId string
	TokenId       int64
	TokenURI      string
	VerifyURL     string
}

// render executes the "subject" and "body" blocks of a template.
func render(templateFile string, data any) (string, string, error) {
	tmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return "", "", err
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return "", "", err
	}

	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return "", "", err
	}

	return subject.String(), body.String(), nil
}

// Noop is used when mail is not configured.
type Noop struct{}

func (Noop) Send(templateFile, toUsername, toEmail string, data any) (int, error) {
	return 0, nil
}
