package utils

import (
	"errors"
	"testing"

	"mariadbpaas/pkg/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestValidIdentifier(t *testing.T) {
	for _, ok := range []string{"users", "_private", "t1", "order_items", "A"} {
		assert.True(t, ValidIdentifier(ok), "%q should be valid", ok)
	}
	for _, bad := range []string{"", "1users", "user-name", "users;drop", "a b", "pay`load", "名前"} {
		assert.False(t, ValidIdentifier(bad), "%q should be invalid", bad)
	}
}

func TestCheckIdentifier_ErrorKind(t *testing.T) {
	err := CheckIdentifier("table", "users; DROP TABLE users")
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
	assert.Contains(t, err.Error(), "table")

	assert.NoError(t, CheckIdentifier("table", "users"))
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Name string `validate:"required,min=3"`
	}

	assert.NoError(t, ValidateStruct(&payload{Name: "abc"}))

	err := ValidateStruct(&payload{Name: "a"})
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
}
