package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nastava-api/internal/models"
	"github.com/noah-isme/nastava-api/internal/service"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
)

type scheduleServiceMock struct {
	conflicts  models.ScheduleConflictSet
	createErr  error
	deleteErr  error
	lastFilter models.ScheduleEntryFilter
}

func (m *scheduleServiceMock) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntryDetail, error) {
	m.lastFilter = filter
	return []models.ScheduleEntryDetail{}, nil
}

func (m *scheduleServiceMock) Get(ctx context.Context, id string) (*models.ScheduleEntryDetail, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule entry not found")
}

func (m *scheduleServiceMock) Check(ctx context.Context, req service.CreateScheduleEntryRequest) (models.ScheduleConflictSet, error) {
	return m.conflicts, nil
}

func (m *scheduleServiceMock) Create(ctx context.Context, req service.CreateScheduleEntryRequest) (*models.ScheduleEntry, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.ScheduleEntry{ID: "e1", TermID: req.TermID, CourseID: req.CourseID, DayOfWeek: req.DayOfWeek}, nil
}

func (m *scheduleServiceMock) Delete(ctx context.Context, id string) error {
	return m.deleteErr
}

func jsonContext(t *testing.T, method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestScheduleEntryHandlerCreate(t *testing.T) {
	handler := NewScheduleEntryHandler(&scheduleServiceMock{})
	c, w := jsonContext(t, http.MethodPost, "/entries", map[string]interface{}{
		"termId": "t1", "courseId": "c1", "roomId": "r1", "dayOfWeek": 1, "startMin": 480, "endMin": 570,
	})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"e1"`)
}

func TestScheduleEntryHandlerCreateConflict(t *testing.T) {
	conflicts := models.ScheduleConflictSet{
		Room:      []models.ScheduleEntryDetail{{ScheduleEntry: models.ScheduleEntry{ID: "existing"}}},
		Professor: []models.ScheduleEntryDetail{},
		Group:     []models.ScheduleEntryDetail{},
	}
	appErr := appErrors.WithDetails(appErrors.Clone(appErrors.ErrScheduleConflict, "schedule conflict"), map[string]interface{}{"conflicts": conflicts})
	handler := NewScheduleEntryHandler(&scheduleServiceMock{createErr: appErr})
	c, w := jsonContext(t, http.MethodPost, "/entries", map[string]interface{}{"termId": "t1", "courseId": "c1"})

	handler.Create(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Error     appErrors.Error            `json:"error"`
		Conflicts models.ScheduleConflictSet `json:"conflicts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SCHEDULE_CONFLICT", body.Error.Code)
	require.Len(t, body.Conflicts.Room, 1)
	assert.Equal(t, "existing", body.Conflicts.Room[0].ID)
	assert.Empty(t, body.Conflicts.Professor)
}

func TestScheduleEntryHandlerInvalidBody(t *testing.T) {
	handler := NewScheduleEntryHandler(&scheduleServiceMock{})
	c, w := jsonContext(t, http.MethodPost, "/entries", `{"dayOfWeek": "monday"`)

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleEntryHandlerListFilters(t *testing.T) {
	svc := &scheduleServiceMock{}
	handler := NewScheduleEntryHandler(svc)
	c, w := jsonContext(t, http.MethodGet, "/entries?termId=t1&dayOfWeek=3&groupName=A1", nil)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ScheduleEntryFilter{TermID: "t1", DayOfWeek: 3, GroupName: "A1"}, svc.lastFilter)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestScheduleEntryHandlerCheckAndDelete(t *testing.T) {
	handler := NewScheduleEntryHandler(&scheduleServiceMock{conflicts: models.ScheduleConflictSet{
		Room: []models.ScheduleEntryDetail{}, Professor: []models.ScheduleEntryDetail{}, Group: []models.ScheduleEntryDetail{},
	}})

	c, w := jsonContext(t, http.MethodPost, "/entries/check", map[string]interface{}{"termId": "t1"})
	handler.Check(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)

	c, w = jsonContext(t, http.MethodDelete, "/entries/e1", nil)
	c.Params = gin.Params{{Key: "id", Value: "e1"}}
	handler.Delete(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"ok":true}}`, w.Body.String())
}
