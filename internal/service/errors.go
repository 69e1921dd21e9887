package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/noah-isme/nastava-api/internal/models"
	"github.com/noah-isme/nastava-api/pkg/database"
	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
)

func notFound(resource string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, resource+" not found")
}

// mapLookupError turns a repository lookup error into a 404 or a redacted 500.
func mapLookupError(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(resource)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to load %s", resource))
}

// mapWriteError classifies constraint violations raised while inserting or updating.
func mapWriteError(err error, resource string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return notFound(resource)
	case database.IsUniqueViolation(err):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("%s already exists", resource))
	case database.IsForeignKeyViolation(err):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("%s references a missing record", resource))
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to save %s", resource))
	}
}

// mapDeleteError reports rows still referenced elsewhere as REFERENCED.
func mapDeleteError(err error, resource string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return notFound(resource)
	case database.IsForeignKeyViolation(err):
		return appErrors.Wrap(err, appErrors.ErrReferenced.Code, appErrors.ErrReferenced.Status, fmt.Sprintf("%s is still referenced", resource))
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to delete %s", resource))
	}
}

func pagination(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
