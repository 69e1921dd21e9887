package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nastava-api/internal/dto"
	"github.com/noah-isme/nastava-api/internal/middleware"
	"github.com/noah-isme/nastava-api/internal/service"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
	"github.com/noah-isme/nastava-api/pkg/export"
)

type teacherLoadServiceMock struct {
	hit bool
}

func (m *teacherLoadServiceMock) Rows(ctx context.Context) (*dto.TeacherLoadRows, bool, error) {
	return &dto.TeacherLoadRows{Rows: []dto.FlatLoadRow{{ProfessorID: "p1"}}, Programs: []string{"INF"}}, m.hit, nil
}

func (m *teacherLoadServiceMock) Buckets(ctx context.Context) ([]string, error) {
	return []string{dto.SummaryBucket, "FIT"}, nil
}

func (m *teacherLoadServiceMock) Report(ctx context.Context, bucket string) (*dto.LoadReport, bool, error) {
	if bucket == "nowhere" {
		return nil, false, appErrors.FieldError("bucket", "unknown bucket")
	}
	return &dto.LoadReport{Bucket: dto.SummaryBucket, Merged: true}, m.hit, nil
}

func (m *teacherLoadServiceMock) Export(ctx context.Context, format, bucket string) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "teacher-load-summary.csv", ContentType: export.ContentTypeCSV, Payload: []byte("Professor\n")}, nil
}

func TestTeacherLoadHandlerRowsReportsCacheHit(t *testing.T) {
	handler := NewTeacherLoadHandler(&teacherLoadServiceMock{hit: true})
	c, w := jsonContext(t, "GET", "/teacher-load", nil)
	middleware.WithResponseMeta()(c)

	handler.Rows(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data dto.TeacherLoadRows    `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data.Rows, 1)
	assert.Equal(t, true, body.Meta["cacheHit"])
}

func TestTeacherLoadHandlerReport(t *testing.T) {
	handler := NewTeacherLoadHandler(&teacherLoadServiceMock{})

	c, w := jsonContext(t, "GET", "/teacher-load/report", nil)
	handler.Report(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"merged":true`)

	c, w = jsonContext(t, "GET", "/teacher-load/report?bucket=nowhere", nil)
	handler.Report(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTeacherLoadHandlerExport(t *testing.T) {
	handler := NewTeacherLoadHandler(&teacherLoadServiceMock{})
	c, w := jsonContext(t, "GET", "/teacher-load/export?format=csv", nil)

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentTypeCSV, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "teacher-load-summary.csv")
}
