package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/nastava-api/internal/service"
	"github.com/noah-isme/nastava-api/pkg/response"
)

// TermHandler handles academic cycles and their terms.
type TermHandler struct {
	service *service.TermService
}

// NewTermHandler constructs a term handler.
func NewTermHandler(svc *service.TermService) *TermHandler {
	return &TermHandler{service: svc}
}

// ListCycles godoc
// @Summary List academic cycles
// @Tags Terms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /cycles [get]
func (h *TermHandler) ListCycles(c *gin.Context) {
	cycles, err := h.service.ListCycles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycles, nil)
}

// GetCycle godoc
// @Summary Get cycle by id
// @Tags Terms
// @Produce json
// @Param id path string true "Cycle ID"
// @Success 200 {object} response.Envelope
// @Router /cycles/{id} [get]
func (h *TermHandler) GetCycle(c *gin.Context) {
	cycle, err := h.service.GetCycle(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycle, nil)
}

// CreateCycle godoc
// @Summary Create cycle
// @Tags Terms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CycleRequest true "Cycle payload"
// @Success 201 {object} response.Envelope
// @Router /cycles [post]
func (h *TermHandler) CreateCycle(c *gin.Context) {
	var req service.CycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	cycle, err := h.service.CreateCycle(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cycle)
}

// UpdateCycle godoc
// @Summary Rename cycle
// @Tags Terms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cycle ID"
// @Param payload body service.CycleRequest true "Cycle payload"
// @Success 200 {object} response.Envelope
// @Router /cycles/{id} [put]
func (h *TermHandler) UpdateCycle(c *gin.Context) {
	var req service.CycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	cycle, err := h.service.UpdateCycle(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycle, nil)
}

// DeleteCycle godoc
// @Summary Delete cycle
// @Tags Terms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cycle ID"
// @Success 200 {object} response.Envelope
// @Router /cycles/{id} [delete]
func (h *TermHandler) DeleteCycle(c *gin.Context) {
	if err := h.service.DeleteCycle(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c)
}

// ListTerms godoc
// @Summary List terms of a cycle in order
// @Tags Terms
// @Produce json
// @Param id path string true "Cycle ID"
// @Success 200 {object} response.Envelope
// @Router /cycles/{id}/terms [get]
func (h *TermHandler) ListTerms(c *gin.Context) {
	terms, err := h.service.ListTerms(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, terms, nil)
}

// CreateTerm godoc
// @Summary Create term in a cycle
// @Description Ordinal defaults to the next free position in the cycle.
// @Tags Terms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cycle ID"
// @Param payload body service.TermRequest true "Term payload"
// @Success 201 {object} response.Envelope
// @Router /cycles/{id}/terms [post]
func (h *TermHandler) CreateTerm(c *gin.Context) {
	var req service.TermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	term, err := h.service.CreateTerm(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, term)
}

// GetTerm godoc
// @Summary Get term by id
// @Tags Terms
// @Produce json
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id} [get]
func (h *TermHandler) GetTerm(c *gin.Context) {
	term, err := h.service.GetTerm(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}

// UpdateTerm godoc
// @Summary Update term
// @Tags Terms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Term ID"
// @Param payload body service.TermRequest true "Term payload"
// @Success 200 {object} response.Envelope
// @Router /terms/{id} [put]
func (h *TermHandler) UpdateTerm(c *gin.Context) {
	var req service.TermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	term, err := h.service.UpdateTerm(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}

// DeleteTerm godoc
// @Summary Delete term
// @Tags Terms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id} [delete]
func (h *TermHandler) DeleteTerm(c *gin.Context) {
	if err := h.service.DeleteTerm(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c)
}
