package demo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlowHashIsDeterministic(t *testing.T) {
	assert.Equal(t, slowHash(42), slowHash(42))
	assert.NotEqual(t, slowHash(1), slowHash(2))
}

func TestRunAgreesWithSingleThreadedBaseline(t *testing.T) {
	result := Run(4, 64)
	assert.Equal(t, result.SingleThreadResult, result.SchedulerResult)
	assert.True(t, result.Correct)

	var buf bytes.Buffer
	_, err := result.Statistics.WriteTo(&buf)
	require.NoError(t, err)
	assert.NotEmpty(t, buf.String())
}
