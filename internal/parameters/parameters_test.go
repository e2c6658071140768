package parameters

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestNewFromConfigString(t *testing.T) {
	params := NewFromConfigString("linear, ab,max_depth=3,,path=a=b,")
	assert.Equal(t, Params{"linear": "", "ab": "", "max_depth": "3", "path": "a=b"}, params)
	assert.Empty(t, NewFromConfigString(""))
}

func TestGetParamOr(t *testing.T) {
	params := NewFromConfigString("ab,greedy=false,max_depth=3,randomness=0.5,max_time=1m30s,name=v1,bad=x")

	ab, err := GetParamOr(params, "ab", false)
	require.NoError(t, err)
	assert.True(t, ab)
	greedy, err := GetParamOr(params, "greedy", true)
	require.NoError(t, err)
	assert.False(t, greedy)
	missing, err := GetParamOr(params, "missing", true)
	require.NoError(t, err)
	assert.True(t, missing)

	maxDepth, err := GetParamOr(params, "max_depth", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, maxDepth)
	randomness, err := GetParamOr(params, "randomness", float32(0))
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), randomness)
	randomness64, err := GetParamOr(params, "randomness", 0.0)
	require.NoError(t, err)
	assert.Equal(t, 0.5, randomness64)
	maxTime, err := GetParamOr(params, "max_time", time.Duration(0))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, maxTime)
	name, err := GetParamOr(params, "name", "best")
	require.NoError(t, err)
	assert.Equal(t, "v1", name)

	_, err = GetParamOr(params, "bad", 0)
	assert.Error(t, err)
	_, err = GetParamOr(params, "bad", false)
	assert.Error(t, err)
	_, err = GetParamOr(params, "bad", time.Duration(0))
	assert.Error(t, err)
	_, err = GetParamOr(params, "bad", float32(0))
	assert.Error(t, err)

	// GetParamOr doesn't consume parameters.
	assert.Len(t, params, 7)
}

func TestPopParamOr(t *testing.T) {
	params := NewFromConfigString("ab,max_depth=3,bad=x")
	maxDepth, err := PopParamOr(params, "max_depth", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, maxDepth)
	_, err = PopParamOr(params, "bad", 2)
	assert.Error(t, err)
	assert.Contains(t, params, "bad", "parameters that fail to parse are not consumed")

	assert.Error(t, CheckAllConsumed(params))
	_, err = PopParamOr(params, "ab", false)
	require.NoError(t, err)
	delete(params, "bad")
	assert.NoError(t, CheckAllConsumed(params))
}
