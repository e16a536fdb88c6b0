package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCarriesCode(t *testing.T) {
	err := Error(EINVALID, "offset %d out of range", 42)
	assert.Equal(t, EINVALID, Code(err))
	assert.Equal(t, "offset 42 out of range", UserMessage(err))
}

func TestWrapErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError(cause, EINTERNAL, "wrapped")
	assert.Equal(t, EINTERNAL, Code(err))
	assert.ErrorIs(t, err, cause)
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, EINTERNAL, Code(errors.New("opaque")))
	assert.Equal(t, NOERROR, Code(nil))
	assert.Equal(t, "", UserMessage(nil))
}
