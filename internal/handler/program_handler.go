package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/nastava-api/internal/models"
	"github.com/noah-isme/nastava-api/internal/service"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
	"github.com/noah-isme/nastava-api/pkg/response"
)

// ProgramHandler handles study programs, program years and curriculum links.
type ProgramHandler struct {
	service *service.ProgramService
}

// NewProgramHandler constructs a program handler.
func NewProgramHandler(svc *service.ProgramService) *ProgramHandler {
	return &ProgramHandler{service: svc}
}

// List godoc
// @Summary List study programs
// @Tags Programs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *ProgramHandler) List(c *gin.Context) {
	programs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, nil)
}

// Get godoc
// @Summary Get study program by id
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /programs/{id} [get]
func (h *ProgramHandler) Get(c *gin.Context) {
	program, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// Create godoc
// @Summary Create study program
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.ProgramRequest true "Program payload"
// @Success 201 {object} response.Envelope
// @Router /programs [post]
func (h *ProgramHandler) Create(c *gin.Context) {
	var req service.ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	program, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

// Update godoc
// @Summary Update study program
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param payload body service.ProgramRequest true "Program payload"
// @Success 200 {object} response.Envelope
// @Router /programs/{id} [put]
func (h *ProgramHandler) Update(c *gin.Context) {
	var req service.ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	program, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// Delete godoc
// @Summary Delete study program
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /programs/{id} [delete]
func (h *ProgramHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c)
}

// ListYears godoc
// @Summary List years of study
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /programs/{id}/years [get]
func (h *ProgramHandler) ListYears(c *gin.Context) {
	years, err := h.service.ListYears(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, nil)
}

// AddYear godoc
// @Summary Add year of study
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param payload body service.ProgramYearRequest true "Year payload"
// @Success 201 {object} response.Envelope
// @Router /programs/{id}/years [post]
func (h *ProgramHandler) AddYear(c *gin.Context) {
	var req service.ProgramYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	year, err := h.service.AddYear(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, year)
}

// DeleteYear godoc
// @Summary Remove year of study
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param year path int true "Year number"
// @Success 200 {object} response.Envelope
// @Router /programs/{id}/years/{year} [delete]
func (h *ProgramHandler) DeleteYear(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		response.Error(c, appErrors.FieldError("year", "must be a number"))
		return
	}
	if err := h.service.DeleteYear(c.Request.Context(), c.Param("id"), year); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c)
}

// ListSubjects godoc
// @Summary List curriculum links of a program
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /programs/{id}/subjects [get]
func (h *ProgramHandler) ListSubjects(c *gin.Context) {
	links, err := h.service.ListSubjects(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links, nil)
}

// LinkSubject godoc
// @Summary Link subject to a program year
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param payload body service.SubjectLinkRequest true "Link payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /programs/{id}/subjects [post]
func (h *ProgramHandler) LinkSubject(c *gin.Context) {
	var req service.SubjectLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	link, err := h.service.LinkSubject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// UnlinkSubject godoc
// @Summary Remove subject link
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param subjectId path string true "Subject ID"
// @Param year query int true "Year number"
// @Success 200 {object} response.Envelope
// @Router /programs/{id}/subjects/{subjectId} [delete]
func (h *ProgramHandler) UnlinkSubject(c *gin.Context) {
	year := queryInt(c, "year", 0)
	if year < 1 {
		response.Error(c, appErrors.FieldError("year", "required"))
		return
	}
	link := models.SubjectProgram{ProgramID: c.Param("id"), SubjectID: c.Param("subjectId"), YearNumber: year}
	if err := h.service.UnlinkSubject(c.Request.Context(), link); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c)
}
