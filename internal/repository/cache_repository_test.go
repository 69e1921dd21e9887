package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/nastava-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "teacher-load:rows", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "teacher-load:rows", map[string]int{"a": 1}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "teacher-load:rows"))
	assert.NoError(t, repo.DeleteByPattern(ctx, "teacher-load:*"))
	assert.NoError(t, repo.Close())
}
