package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nastava-api/internal/models"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
)

type stubValidator struct {
	tokens map[string]*models.AuthContext
}

func (s stubValidator) ValidateToken(token string) (*models.AuthContext, error) {
	if auth, ok := s.tokens[token]; ok {
		return auth, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
}

type recordingAudit struct {
	logs []*models.AuditLog
}

func (r *recordingAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

type recordingObserver struct {
	paths    []string
	statuses []int
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	r.paths = append(r.paths, path)
	r.statuses = append(r.statuses, status)
}

func newAuthRouter(audit *recordingAudit) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator := stubValidator{tokens: map[string]*models.AuthContext{
		"admin-token": {UserID: "u-admin", Username: "admin", Role: models.RoleAdmin},
		"staff-token": {UserID: "u-staff", Username: "referent", Role: models.RoleStaff},
	}}
	router := gin.New()
	protected := router.Group("/", JWT(validator))
	protected.DELETE("/entries/:id", Audit(audit, nil, models.AuditActionScheduleDelete, "schedule_entries"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	protected.GET("/users", RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})
	return router
}

func serve(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTRejectsMissingAndInvalidTokens(t *testing.T) {
	router := newAuthRouter(&recordingAudit{})

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodDelete, "/entries/e1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodDelete, "/entries/e1", "forged").Code)

	req := httptest.NewRequest(http.MethodDelete, "/entries/e1", nil)
	req.Header.Set("Authorization", "Basic admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	router := newAuthRouter(&recordingAudit{})

	rec := serve(router, http.MethodGet, "/users", "admin-token")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/users", "staff-token").Code)
}

func TestAuditRecordsSuccessfulRequests(t *testing.T) {
	audit := &recordingAudit{}
	router := newAuthRouter(audit)

	rec := serve(router, http.MethodDelete, "/entries/e1", "staff-token")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, audit.logs, 1)
	entry := audit.logs[0]
	assert.Equal(t, models.AuditActionScheduleDelete, entry.Action)
	assert.Equal(t, "u-staff", *entry.UserID)
	assert.Equal(t, "e1", *entry.ResourceID)

	serve(router, http.MethodDelete, "/entries/e1", "")
	assert.Len(t, audit.logs, 1)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &recordingObserver{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/rooms/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, http.MethodGet, "/rooms/r1", "")
	serve(router, http.MethodGet, "/nowhere", "")

	assert.Equal(t, []string{"/rooms/:id", "unmatched"}, observer.paths)
	assert.Equal(t, []int{http.StatusOK, http.StatusNotFound}, observer.statuses)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	router := gin.New()
	router.Use(WithResponseMeta())
	router.GET("/", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	serve(router, http.MethodGet, "/", "")
	assert.Equal(t, true, meta["cacheHit"])
	assert.Contains(t, meta, "processingTimeMs")
	assert.NotContains(t, meta, "startedAt")
}
