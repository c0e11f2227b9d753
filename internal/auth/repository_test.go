package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTranslateCreateError(t *testing.T) {
	assert.NoError(t, translateCreateError(nil))

	err := translateCreateError(gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, err, ErrUserAlreadyExists,
		"a unique-index violation on email is a duplicate registration")

	boom := errors.New("connection reset")
	err = translateCreateError(boom)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserAlreadyExists)
	assert.ErrorIs(t, err, boom)
}
