//go:build js_eval

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateJS(t *testing.T) {
	require.True(t, JSAvailable())
	runner, err := New(WithEvaluator(NewJSEvaluator()))
	require.NoError(t, err)

	ok, err := runner.EvaluateBool(requestBag(), `region === "us-east-1" && tags.length === 2`)
	require.NoError(t, err)
	assert.True(t, ok)
}
