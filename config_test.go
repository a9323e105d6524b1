package arena

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(`
kind = "pool"
alignment = 16
capacity = 4096
slot_size = 64
backing = "heap"
zero_on_reset = false
`)
	require.NoError(t, err)
	assert.Equal(t, Pool, cfg.Kind)
	assert.Equal(t, 16, cfg.Alignment)
	assert.Equal(t, 4096, cfg.Capacity)
	assert.Equal(t, 64, cfg.SlotSize)
	assert.Equal(t, BackingHeap, cfg.Backing)
	require.NotNil(t, cfg.ZeroOnReset)
	assert.False(t, *cfg.ZeroOnReset)

	a, err := NewFromConfig(cfg)
	require.NoError(t, err)
	defer a.Release()
	assert.Equal(t, 64, a.TotalSlots())
	assert.False(t, a.region.mmapped)
	assert.False(t, a.zeroOnReset)
}

func TestDecodeConfigDefaults(t *testing.T) {
	cfg, err := DecodeConfig(`capacity = 128`)
	require.NoError(t, err)
	assert.Equal(t, Linear, cfg.Kind)
	assert.Equal(t, MinAlignment, cfg.Alignment)
	assert.Equal(t, 128, cfg.Capacity)
}

func TestDecodeConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
	}{
		{"bad alignment", `alignment = 12`, ErrAlignmentNotPowerOfTwo},
		{"zero capacity", `capacity = 0`, ErrZeroCapacity},
		{"negative slot", "kind = \"pool\"\nslot_size = -1", ErrZeroSize},
		{"slot too large", "kind = \"pool\"\ncapacity = 64\nslot_size = 65", ErrSlotTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeConfig(tt.text)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err := DecodeConfig(`kind = "buddy"`)
	assert.ErrorContains(t, err, "E401")

	_, err = DecodeConfig(`backing = "disk"`)
	assert.ErrorContains(t, err, "backing")

	_, err = DecodeConfig(`capcity = 10`)
	assert.ErrorContains(t, err, "unknown key")

	_, err = DecodeConfig(`capacity = `)
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.toml")
	require.NoError(t, os.WriteFile(path, []byte("kind = \"stack\"\ncapacity = 32\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Stack, cfg.Kind)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestNewFromConfigLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cfg := DefaultConfig
	cfg.Kind = Pool
	cfg.Capacity = 8
	cfg.SlotSize = 16

	_, err := NewFromConfig(cfg, WithLogger(zap.New(core)))
	require.ErrorIs(t, err, ErrCreationFailed)
	require.ErrorIs(t, err, ErrSlotTooLarge)

	entries := logs.FilterMessage("arena creation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}

func TestArenaLifecycleLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	a, err := New(Linear, 8, 16, WithLogger(zap.New(core)))
	require.NoError(t, err)

	_, _ = a.Alloc(32)
	a.Reset()
	a.Release()

	var msgs []string
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{
		"arena created",
		"arena allocation failed",
		"arena reset",
		"arena released",
	}, msgs)
}
