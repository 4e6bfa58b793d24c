//go:build !js_eval

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSUnavailableWithoutTag(t *testing.T) {
	assert.False(t, JSAvailable())
	assert.Nil(t, NewJSEvaluator())

	_, err := New(WithEvaluator(NewJSEvaluator()))
	assert.ErrorIs(t, err, ErrNoEvaluator)
}
