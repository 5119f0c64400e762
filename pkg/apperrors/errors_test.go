package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassOfUnwrapsChains(t *testing.T) {
	base := New(ClassRejectedQuery, "only SELECT statements are allowed")
	wrapped := fmt.Errorf("handling request: %w", base)

	assert.Equal(t, ClassRejectedQuery, ClassOf(wrapped))
	assert.True(t, IsClass(wrapped, ClassRejectedQuery))
	assert.Equal(t, Class(""), ClassOf(errors.New("plain")))
}

func TestGenerationCarriesReason(t *testing.T) {
	err := Generation(ReasonEmptyCompletion, nil, "model returned nothing")

	assert.Equal(t, ClassGeneration, ClassOf(err))
	assert.Equal(t, ReasonEmptyCompletion, ReasonOf(err))
	assert.Contains(t, err.Error(), "generation_failure")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(ClassExecution, cause, "executing query")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestIsRetryableOnlyForGenerationTimeouts(t *testing.T) {
	assert.True(t, Generation(ReasonTimeout, nil, "timed out").IsRetryable())
	assert.False(t, Generation(ReasonConnection, nil, "refused").IsRetryable())
	assert.False(t, Generation(ReasonEmptyCompletion, nil, "empty").IsRetryable())
	assert.False(t, New(ClassQueryTimeout, "statement timeout").IsRetryable())
	assert.False(t, New(ClassValidation, "bad input").IsRetryable())
}
