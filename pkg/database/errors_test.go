package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassifyPQErrors(t *testing.T) {
	unique := fmt.Errorf("create room: %w", &pq.Error{Code: "23505"})
	fk := &pq.Error{Code: "23503"}
	serial := fmt.Errorf("commit: %w", &pq.Error{Code: "40001"})

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.True(t, IsSerializationFailure(serial))
	assert.False(t, IsSerializationFailure(errors.New("plain")))
}
