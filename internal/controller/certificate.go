package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/educhain/certchain/internal/model"
	"github.com/educhain/certchain/internal/service"
	"github.com/educhain/certchain/internal/util"
	"github.com/educhain/certchain/pkg/certqr"
	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	*baseController
}

const (
	ErrCertificateIdRequired = "certificate id is required"
	ErrTokenIdRequired       = "token ID is required"
	ErrInvalidIssueDate      = "issueDate must be an RFC3339 timestamp or a YYYY-MM-DD date"
)

// parseIssueDate accepts what browsers and scripts usually send. Empty means now.
func parseIssueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}

	return nil, errors.New(ErrInvalidIssueDate)
}

func (cc CertificateController) Mint(ctx *gin.Context) {
	type Request struct {
		CertificateId  string `json:"certificateId" form:"certificateId" binding:"required,strNotEmpty,cmax=128"`
		StudentAddress string `json:"studentAddress" form:"studentAddress" binding:"required,eth_addr"`
		StudentName    string `json:"studentName" form:"studentName" binding:"required,strNotEmpty,cmax=200"`
		CourseName     string `json:"courseName" form:"courseName" binding:"required,strNotEmpty,cmax=200"`
		Institution    string `json:"institution" form:"institution" binding:"required,strNotEmpty,cmax=200"`
		IssueDate      string `json:"issueDate" form:"issueDate"`
	}
	var body Request

	err := ctx.ShouldBind(&body)
	if err != nil {
		cc.app.Logger.Debugf("Invalid mint request: %v", err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Missing required fields: certificateId, studentAddress, studentName, courseName, institution", util.GenerateErrorMessages(err), nil)
		return
	}

	issueDate, err := parseIssueDate(body.IssueDate)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid issue date", util.GenerateErrorMessages(err, "issueDate"), nil)
		return
	}

	if issuer := cc.getIssuer(ctx); issuer != nil {
		cc.app.Logger.Infow("Mint requested", "issuer", issuer.Subject, "institution", issuer.Institution, "certificateId", body.CertificateId)
	}

	result, err := cc.app.Service.Issuance.Issue(ctx, service.IssueRequest{
		CertificateId:  body.CertificateId,
		StudentAddress: body.StudentAddress,
		StudentName:    body.StudentName,
		CourseName:     body.CourseName,
		Institution:    body.Institution,
		IssueDate:      issueDate,
	})
	if err != nil {
		cc.responseServiceError(ctx, err, "Failed to mint certificate", "certificateId")
		return
	}

	util.ResponseCreated(ctx, result)
}

func (cc CertificateController) Verify(ctx *gin.Context) {
	tokenId := strings.TrimSpace(ctx.Params.ByName("tokenId"))
	if tokenId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Token ID is required", util.GenerateErrorMessages(errors.New(ErrTokenIdRequired), "tokenId"), nil)
		return
	}

	result, err := cc.app.Service.Verification.Verify(ctx, tokenId)
	if err != nil {
		cc.responseServiceError(ctx, err, "Failed to verify certificate", "tokenId")
		return
	}

	if !result.IsValid {
		message := result.Error
		if message == "" {
			message = "Certificate verification failed"
		}
		util.ResponseFailed(ctx, http.StatusNotFound, message, nil, result)
		return
	}

	util.ResponseSuccess(ctx, result)
}

// GetById looks the certificate up by ?by=id|certificateId|tokenId, or tries all three in that order.
func (cc CertificateController) GetById(ctx *gin.Context) {
	type Request struct {
		By string `form:"by" binding:"omitempty,oneof=id certificateId tokenId"`
	}
	var query Request

	id := strings.TrimSpace(ctx.Params.ByName("id"))
	if id == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Certificate id is required", util.GenerateErrorMessages(errors.New(ErrCertificateIdRequired), "id"), nil)
		return
	}

	if err := ctx.ShouldBindQuery(&query); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	var (
		cert *model.Certificate
		err  error
	)
	if query.By == "" {
		cert, err = cc.app.Service.Certificate.Resolve(ctx, id)
	} else {
		cert, err = cc.app.Service.Certificate.Get(ctx, service.LookupKey{Kind: service.LookupKind(query.By), Value: id})
	}
	if err != nil {
		cc.responseServiceError(ctx, err, "Failed to get certificate", "id")
		return
	}

	util.ResponseSuccess(ctx, cert)
}

func (cc CertificateController) List(ctx *gin.Context) {
	type Request struct {
		StudentAddress string `form:"studentAddress"`
		Status         string `form:"status"`
		Limit          string `form:"limit"`
	}
	var query Request

	if err := ctx.ShouldBindQuery(&query); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	// A non numeric limit falls back to the default like an absent one.
	limit, _ := strconv.Atoi(strings.TrimSpace(query.Limit))

	certificates, err := cc.app.Service.Certificate.List(ctx, service.CertificateFilter{
		StudentAddress: query.StudentAddress,
		Status:         query.Status,
		Limit:          limit,
	})
	if err != nil {
		cc.responseServiceError(ctx, err, "Failed to fetch certificates", "status")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"certificates": certificates,
		"count":        len(certificates),
	})
}

func (cc CertificateController) QRCode(ctx *gin.Context) {
	type Request struct {
		Format string `form:"format" binding:"omitempty,oneof=png svg"`
	}
	var query Request

	if err := ctx.ShouldBindQuery(&query); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	format, err := certqr.ParseFormat(query.Format)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid format", util.GenerateErrorMessages(err, "format"), nil)
		return
	}

	id := strings.TrimSpace(ctx.Params.ByName("id"))
	code, err := cc.app.Service.Certificate.QRCode(ctx, id, format)
	if err != nil {
		cc.responseServiceError(ctx, err, "Failed to generate qr code", "id")
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", "certificate-qr."+string(format)))
	ctx.Data(http.StatusOK, format.ContentType(), code)
}
