package main

import (
	"bytes"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStressArenaIsDeterministic(t *testing.T) {
	first, err := stressArena(99, 2000, zap.NewNop())
	require.NoError(t, err)
	second, err := stressArena(99, 2000, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, first.ok(), "%+v", first)
	assert.Positive(t, first.Allocs+first.Failures)
}

func TestRunStress(t *testing.T) {
	jsonOut = true
	defer func() { jsonOut = false }()

	var buf bytes.Buffer
	require.NoError(t, runStress(&buf, 32, 1000, 4, 7))

	var sum stressSummary
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &sum))
	assert.Equal(t, 32, sum.Arenas)
	assert.Equal(t, 1000, sum.Iterations)
	assert.Empty(t, sum.Bad)
	assert.Positive(t, sum.Allocs)
}

func TestRunStressInvalid(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, runStress(&buf, 0, 10, 1, 1))
	assert.Error(t, runStress(&buf, 1, 0, 1, 1))
}
