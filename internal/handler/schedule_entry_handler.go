package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/nastava-api/internal/models"
	"github.com/noah-isme/nastava-api/internal/service"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
	"github.com/noah-isme/nastava-api/pkg/response"
)

type scheduleEntryService interface {
	List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntryDetail, error)
	Get(ctx context.Context, id string) (*models.ScheduleEntryDetail, error)
	Check(ctx context.Context, req service.CreateScheduleEntryRequest) (models.ScheduleConflictSet, error)
	Create(ctx context.Context, req service.CreateScheduleEntryRequest) (*models.ScheduleEntry, error)
	Delete(ctx context.Context, id string) error
}

// ScheduleEntryHandler exposes weekly schedule entries.
type ScheduleEntryHandler struct {
	service scheduleEntryService
}

// NewScheduleEntryHandler constructs a schedule entry handler.
func NewScheduleEntryHandler(svc scheduleEntryService) *ScheduleEntryHandler {
	return &ScheduleEntryHandler{service: svc}
}

// List godoc
// @Summary List schedule entries
// @Description Ordered by day, start and end minute.
// @Tags Schedule
// @Produce json
// @Param termId query string false "Term filter"
// @Param dayOfWeek query int false "1 (Monday) .. 7"
// @Param professorId query string false "Professor filter"
// @Param roomId query string false "Room filter"
// @Param groupName query string false "Group filter"
// @Success 200 {object} response.Envelope
// @Router /entries [get]
func (h *ScheduleEntryHandler) List(c *gin.Context) {
	filter := models.ScheduleEntryFilter{
		TermID:      c.Query("termId"),
		DayOfWeek:   queryInt(c, "dayOfWeek", 0),
		ProfessorID: c.Query("professorId"),
		RoomID:      c.Query("roomId"),
		GroupName:   c.Query("groupName"),
	}
	entries, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Get godoc
// @Summary Get schedule entry by id
// @Tags Schedule
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Router /entries/{id} [get]
func (h *ScheduleEntryHandler) Get(c *gin.Context) {
	entry, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Check godoc
// @Summary Dry-run conflict check
// @Description Returns the conflicts the entry would cause without saving it.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body service.CreateScheduleEntryRequest true "Entry payload"
// @Success 200 {object} response.Envelope
// @Router /entries/check [post]
func (h *ScheduleEntryHandler) Check(c *gin.Context) {
	var req service.CreateScheduleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	conflicts, err := h.service.Check(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"conflicts": conflicts, "ok": conflicts.Empty()}, nil)
}

// Create godoc
// @Summary Create schedule entry
// @Description Rejected with 409 and the conflicting entries grouped by room, professor and group.
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateScheduleEntryRequest true "Entry payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /entries [post]
func (h *ScheduleEntryHandler) Create(c *gin.Context) {
	var req service.CreateScheduleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	entry, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrScheduleConflict.Code {
			c.JSON(appErr.Status, gin.H{"error": appErr, "conflicts": appErr.Details["conflicts"]})
			return
		}
		response.Error(c, appErr)
		return
	}
	response.Created(c, entry)
}

// Delete godoc
// @Summary Delete schedule entry
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /entries/{id} [delete]
func (h *ScheduleEntryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c)
}
