package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	arena "github.com/pavanmanishd/regionarena"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOps(t *testing.T) {
	ops, err := parseOps("a:32, v:1,r,m,p:0,pop,f:2,rec,u,")
	require.NoError(t, err)
	require.Len(t, ops, 9)

	codes := make([]opCode, len(ops))
	for i, o := range ops {
		codes[i] = o.code
	}
	assert.Equal(t, []opCode{opAlloc, opVerify, opReset, opMark, opPopTo, opPop, opFree, opRecord, opUnwind}, codes)
	assert.Equal(t, 32, ops[0].arg)
	assert.Equal(t, 2, ops[6].arg)
	assert.Equal(t, "a:32", ops[0].text)
}

func TestParseOpsInvalid(t *testing.T) {
	tests := []struct {
		script string
		errMsg string
	}{
		{"", "empty"},
		{" , ", "empty"},
		{"x:1", "unknown op"},
		{"a", "needs an argument"},
		{"r:1", "takes no argument"},
		{"a:ten", "bad argument"},
	}
	for _, tt := range tests {
		t.Run(tt.script, func(t *testing.T) {
			_, err := parseOps(tt.script)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func scriptConfig(kind arena.Kind, capacity, slotSize int) arena.Config {
	cfg := arena.DefaultConfig
	cfg.Kind = kind
	cfg.Alignment = 8
	cfg.Capacity = capacity
	cfg.SlotSize = slotSize
	cfg.Backing = arena.BackingHeap
	return cfg
}

func runSession(t *testing.T, cfg arena.Config, script string) []stepResult {
	t.Helper()
	ops, err := parseOps(script)
	require.NoError(t, err)
	a, err := arena.NewFromConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(a.Release)

	steps, err := (&session{a: a}).run(ops)
	require.NoError(t, err)
	return steps
}

func TestSessionLinear(t *testing.T) {
	steps := runSession(t, scriptConfig(arena.Linear, 64, 0), "a:32,a:32,v:1,a:1,r,v:64")

	assert.True(t, steps[0].OK)
	assert.Equal(t, "#0 len=32", steps[0].Result)
	assert.Equal(t, 64, steps[1].SizeInUse)
	assert.False(t, steps[2].OK)
	assert.False(t, steps[3].OK)
	assert.Contains(t, steps[3].Result, "E104")
	assert.Equal(t, "generation 1", steps[4].Result)
	assert.Equal(t, 0, steps[4].SizeInUse)
	assert.True(t, steps[5].OK)
}

func TestSessionStack(t *testing.T) {
	steps := runSession(t, scriptConfig(arena.Stack, 64, 0), "m,a:8,m,a:8,p:0,p:1,rec,a:16,u,pop")

	assert.Equal(t, "marker #0 at 0", steps[0].Result)
	assert.Equal(t, "marker #1 at 8", steps[2].Result)
	assert.Equal(t, 16, steps[3].SizeInUse)
	assert.True(t, steps[4].OK)
	assert.Equal(t, 0, steps[4].SizeInUse)
	assert.False(t, steps[5].OK, "marker #1 sits on popped allocations")
	assert.Contains(t, steps[5].Result, "E501")
	assert.Equal(t, 16, steps[7].SizeInUse)
	assert.True(t, steps[8].OK)
	assert.Equal(t, 0, steps[8].SizeInUse)
	assert.False(t, steps[9].OK, "nothing left to pop")
}

func TestSessionPool(t *testing.T) {
	steps := runSession(t, scriptConfig(arena.Pool, 64, 16), "a:16,a:16,f:0,f:0,a:8,a:17")

	assert.Equal(t, 32, steps[1].SizeInUse)
	assert.True(t, steps[2].OK)
	assert.Equal(t, 16, steps[2].SizeInUse)
	assert.False(t, steps[3].OK, "double free")
	assert.Contains(t, steps[3].Result, "E204")
	assert.Equal(t, "#2 len=8", steps[4].Result)
	assert.Contains(t, steps[5].Result, "E404")
}

func TestSessionWrongKind(t *testing.T) {
	steps := runSession(t, scriptConfig(arena.Linear, 64, 0), "m,a:8,f:0")
	assert.Contains(t, steps[0].Result, "E502")
	assert.Contains(t, steps[2].Result, "E502")
}

func TestSessionBadReference(t *testing.T) {
	a, err := arena.New(arena.Stack, 8, 64)
	require.NoError(t, err)
	defer a.Release()

	ops, err := parseOps("a:8,p:0")
	require.NoError(t, err)
	_, err = (&session{a: a}).run(ops)
	assert.ErrorContains(t, err, "no marker #0")

	ops, err = parseOps("f:3")
	require.NoError(t, err)
	_, err = (&session{a: a}).run(ops)
	assert.ErrorContains(t, err, "no allocation #3")
}

func TestRunScriptText(t *testing.T) {
	jsonOut = false
	var buf bytes.Buffer
	err := runScript(&buf, scriptConfig(arena.Scratch, 10, 0), "v:10,a:10,v:1")
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "scratch arena, capacity 10, alignment 8\n"))
	assert.Contains(t, out, "in use 10 of 10 bytes (100.00%)")
}

func TestRunScriptJSON(t *testing.T) {
	jsonOut = true
	defer func() { jsonOut = false }()

	var buf bytes.Buffer
	require.NoError(t, runScript(&buf, scriptConfig(arena.Linear, 64, 0), "a:40,a:1"))

	var report runReport
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &report))
	require.Len(t, report.Steps, 2)
	assert.Equal(t, 41, report.Steps[1].SizeInUse)
	assert.Equal(t, arena.Linear, report.Metrics.Kind)
	assert.Equal(t, 41, report.Metrics.SizeInUse)
	assert.Len(t, report.Digest, 16)
}

func TestRunCommandWithConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
kind = "pool"
alignment = 8
capacity = 64
slot_size = 16
backing = "heap"
`), 0o644))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"run", "--config", path, "--capacity", "32", "--ops", "a:16,a:16,a:16"})
	defer rootCmd.SetArgs(nil)
	require.NoError(t, rootCmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "pool arena, capacity 32")
	assert.Contains(t, out, "E104")
}
