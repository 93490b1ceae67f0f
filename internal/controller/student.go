package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/educhain/certchain/internal/service"
	"github.com/educhain/certchain/internal/util"
	"github.com/gin-gonic/gin"
)

type StudentController struct {
	*baseController
}

func (sc StudentController) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(strings.TrimSpace(ctx.Query("limit")))

	students, err := sc.app.Service.Student.List(ctx, limit)
	if err != nil {
		sc.responseServiceError(ctx, err, "Failed to fetch students", "")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"students": students,
		"count":    len(students),
	})
}

func (sc StudentController) GetByAddress(ctx *gin.Context) {
	student, err := sc.app.Service.Student.GetByAddress(ctx, ctx.Params.ByName("address"))
	if err != nil {
		sc.responseServiceError(ctx, err, "Failed to fetch student", "address")
		return
	}

	util.ResponseSuccess(ctx, student)
}

// Upsert answers 201 when the student is new and 200 when an existing one was updated.
func (sc StudentController) Upsert(ctx *gin.Context) {
	type Request struct {
		Address string `json:"address" form:"address" binding:"required,eth_addr"`
		Name    string `json:"name" form:"name" binding:"required,strNotEmpty,cmax=200"`
		Email   string `json:"email" form:"email" binding:"omitempty,email"`
	}
	var body Request

	if err := ctx.ShouldBind(&body); err != nil {
		sc.app.Logger.Debugf("Invalid student request: %v", err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Address and name are required", util.GenerateErrorMessages(err), nil)
		return
	}

	student, created, err := sc.app.Service.Student.Upsert(ctx, service.UpsertStudentRequest{
		Address: body.Address,
		Name:    body.Name,
		Email:   body.Email,
	})
	if err != nil {
		sc.responseServiceError(ctx, err, "Failed to save student", "address")
		return
	}

	if created {
		util.ResponseCreated(ctx, student)
		return
	}
	util.ResponseSuccess(ctx, student)
}
