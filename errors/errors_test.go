package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelWrapping(t *testing.T) {
	err := NewSchemaError("duplicate short name %q", "Red")
	assert.True(t, IsSchemaError(err))
	assert.Contains(t, err.Error(), `duplicate short name "Red"`)

	wrapped := Wrap(err, "loading standard schema")
	assert.True(t, IsSchemaError(wrapped))
}

func TestSentinelDiscrimination(t *testing.T) {
	err := Wrap(ErrTagAmbiguous, "term Acceleration")
	assert.True(t, Is(err, ErrTagAmbiguous))
	assert.False(t, Is(err, ErrTagUnknown))
	assert.False(t, IsSchemaError(err))
}

func TestHints(t *testing.T) {
	err := WithHint(ErrTagAmbiguous, "qualify the term with its library prefix")
	assert.True(t, Is(err, ErrTagAmbiguous))
}
