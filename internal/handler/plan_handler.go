package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/nastava-api/internal/dto"
	"github.com/noah-isme/nastava-api/internal/service"
	"github.com/noah-isme/nastava-api/pkg/export"
	"github.com/noah-isme/nastava-api/pkg/response"
)

type planService interface {
	GetOrCreatePlan(ctx context.Context, programID string, year int) (*dto.PlanResponse, error)
	UpdateRow(ctx context.Context, id string, req service.UpdatePlanRowRequest) (*dto.PlanRow, error)
	AddTeacherRow(ctx context.Context, req service.AddTeacherRowRequest) (*dto.PlanRow, error)
	ExportPlan(ctx context.Context, programID string, year int) ([]byte, string, error)
}

// PlanHandler exposes the teaching plan (PRN) of a program year.
type PlanHandler struct {
	service planService
}

// NewPlanHandler constructs a plan handler.
func NewPlanHandler(svc planService) *PlanHandler {
	return &PlanHandler{service: svc}
}

// Get godoc
// @Summary Get or create the plan of a program year
// @Description The first request for a program year creates the plan and seeds one row per linked subject.
// @Tags Plan
// @Produce json
// @Param programId query string true "Program ID"
// @Param year query int true "Year of study"
// @Success 200 {object} response.Envelope{data=dto.PlanResponse}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /plan [get]
func (h *PlanHandler) Get(c *gin.Context) {
	plan, err := h.service.GetOrCreatePlan(c.Request.Context(), c.Query("programId"), queryInt(c, "year", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Export godoc
// @Summary Export the plan of a program year as XLSX
// @Tags Plan
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param programId query string true "Program ID"
// @Param year query int true "Year of study"
// @Success 200 {file} binary
// @Router /plan/export [get]
func (h *PlanHandler) Export(c *gin.Context) {
	payload, filename, err := h.service.ExportPlan(c.Request.Context(), c.Query("programId"), queryInt(c, "year", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, filename, export.ContentTypeXLSX, payload)
}

// UpdateRow godoc
// @Summary Update a plan row
// @Description Omitted totals keep their stored values; professorId null or "" unassigns.
// @Tags Plan
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Row ID"
// @Param payload body service.UpdatePlanRowRequest true "Row payload"
// @Success 200 {object} response.Envelope{data=dto.PlanRow}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rows/{id} [put]
func (h *PlanHandler) UpdateRow(c *gin.Context) {
	var req service.UpdatePlanRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	row, err := h.service.UpdateRow(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// AddTeacher godoc
// @Summary Add another professor row for a subject in the plan
// @Tags Plan
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.AddTeacherRowRequest true "Row payload"
// @Success 201 {object} response.Envelope{data=dto.PlanRow}
// @Router /rows/add-teacher [post]
func (h *PlanHandler) AddTeacher(c *gin.Context) {
	var req service.AddTeacherRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	row, err := h.service.AddTeacherRow(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, row)
}
