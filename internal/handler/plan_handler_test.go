package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nastava-api/internal/dto"
	"github.com/noah-isme/nastava-api/internal/models"
	"github.com/noah-isme/nastava-api/internal/service"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
)

type planServiceMock struct {
	gotProgram string
	gotYear    int
	gotUpdate  service.UpdatePlanRowRequest
}

func (m *planServiceMock) GetOrCreatePlan(ctx context.Context, programID string, year int) (*dto.PlanResponse, error) {
	m.gotProgram, m.gotYear = programID, year
	if year < 1 {
		return nil, appErrors.FieldError("year", "must be at least 1")
	}
	return &dto.PlanResponse{Plan: models.PRNPlan{ID: "plan-1", ProgramID: programID, YearNumber: year}, Rows: []dto.PlanRow{}}, nil
}

func (m *planServiceMock) UpdateRow(ctx context.Context, id string, req service.UpdatePlanRowRequest) (*dto.PlanRow, error) {
	m.gotUpdate = req
	return &dto.PlanRow{ID: id, Mode: models.ModeExercise}, nil
}

func (m *planServiceMock) AddTeacherRow(ctx context.Context, req service.AddTeacherRowRequest) (*dto.PlanRow, error) {
	return &dto.PlanRow{ID: "row-new", PlanID: req.PlanID, SubjectID: req.SubjectID}, nil
}

func (m *planServiceMock) ExportPlan(ctx context.Context, programID string, year int) ([]byte, string, error) {
	return []byte("PK"), "prn-inf-1.xlsx", nil
}

func TestPlanHandlerGet(t *testing.T) {
	svc := &planServiceMock{}
	handler := NewPlanHandler(svc)

	c, w := jsonContext(t, http.MethodGet, "/plan?programId=prog-1&year=2", nil)
	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "prog-1", svc.gotProgram)
	assert.Equal(t, 2, svc.gotYear)
	assert.Contains(t, w.Body.String(), `"plan-1"`)

	c, w = jsonContext(t, http.MethodGet, "/plan?programId=prog-1&year=abc", nil)
	handler.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanHandlerUpdateRowKeepsPresence(t *testing.T) {
	svc := &planServiceMock{}
	handler := NewPlanHandler(svc)

	c, w := jsonContext(t, http.MethodPut, "/rows/r1", `{"professorId": null, "exerciseTotal": "30", "mode": "V"}`)
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	handler.UpdateRow(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.gotUpdate.ProfessorID.Set)
	assert.Nil(t, svc.gotUpdate.ProfessorID.Value)
	assert.Nil(t, svc.gotUpdate.LectureTotal)
	require.NotNil(t, svc.gotUpdate.ExerciseTotal)
	assert.Equal(t, 30, svc.gotUpdate.ExerciseTotal.Int())
}

func TestPlanHandlerAddTeacherAndExport(t *testing.T) {
	handler := NewPlanHandler(&planServiceMock{})

	c, w := jsonContext(t, http.MethodPost, "/rows/add-teacher", map[string]string{"planId": "plan-1", "subjectId": "s1"})
	handler.AddTeacher(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"row-new"`)

	c, w = jsonContext(t, http.MethodGet, "/plan/export?programId=prog-1&year=1", nil)
	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="prn-inf-1.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK", w.Body.String())
}
