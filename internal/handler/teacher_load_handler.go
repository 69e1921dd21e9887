package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/nastava-api/internal/dto"
	"github.com/noah-isme/nastava-api/internal/middleware"
	"github.com/noah-isme/nastava-api/internal/service"
	"github.com/noah-isme/nastava-api/pkg/response"
)

type teacherLoadService interface {
	Rows(ctx context.Context) (*dto.TeacherLoadRows, bool, error)
	Buckets(ctx context.Context) ([]string, error)
	Report(ctx context.Context, bucket string) (*dto.LoadReport, bool, error)
	Export(ctx context.Context, format, bucket string) (*service.ExportFile, error)
}

// TeacherLoadHandler exposes the teacher-load report.
type TeacherLoadHandler struct {
	service teacherLoadService
}

// NewTeacherLoadHandler constructs a teacher-load handler.
func NewTeacherLoadHandler(svc teacherLoadService) *TeacherLoadHandler {
	return &TeacherLoadHandler{service: svc}
}

// Rows godoc
// @Summary Flat teacher-load rows
// @Tags TeacherLoad
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.TeacherLoadRows}
// @Router /teacher-load [get]
func (h *TeacherLoadHandler) Rows(c *gin.Context) {
	rows, cacheHit, err := h.service.Rows(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, rows, nil, middleware.ExtractMeta(c))
}

// Buckets godoc
// @Summary Report buckets (SUMMARY and one per faculty)
// @Tags TeacherLoad
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teacher-load/buckets [get]
func (h *TeacherLoadHandler) Buckets(c *gin.Context) {
	buckets, err := h.service.Buckets(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, buckets, nil)
}

// Report godoc
// @Summary Teacher load grouped by professor
// @Description SUMMARY merges a subject taught across programs into one line; faculty buckets keep program years apart.
// @Tags TeacherLoad
// @Produce json
// @Param bucket query string false "SUMMARY (default) or a faculty"
// @Success 200 {object} response.Envelope{data=dto.LoadReport}
// @Failure 400 {object} response.Envelope
// @Router /teacher-load/report [get]
func (h *TeacherLoadHandler) Report(c *gin.Context) {
	report, cacheHit, err := h.service.Report(c.Request.Context(), c.Query("bucket"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, report, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export the teacher-load report
// @Description xlsx without bucket holds one sheet per bucket; csv and pdf hold one bucket.
// @Tags TeacherLoad
// @Produce octet-stream
// @Param format query string false "xlsx (default), csv or pdf"
// @Param bucket query string false "Bucket"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /teacher-load/export [get]
func (h *TeacherLoadHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), c.Query("format"), c.Query("bucket"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
