package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/nastava-api/internal/middleware"
	"github.com/noah-isme/nastava-api/internal/models"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
)

func authFromContext(c *gin.Context) *models.AuthContext {
	return middleware.CurrentUser(c)
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}

// queryInt parses an optional integer query parameter, falling back to def.
func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}
