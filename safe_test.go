package arena

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSafeArena(t *testing.T) {
	s, err := NewSafeArena(Linear, 8, 1024)
	require.NoError(t, err)
	require.NotNil(t, s.a)
	s.Release()

	_, err = NewSafeArena(Linear, 3, 1024)
	assert.ErrorIs(t, err, ErrCreationFailed)
}

func TestSafeArenaOperations(t *testing.T) {
	s, err := NewSafeArena(Stack, 8, 1024)
	require.NoError(t, err)

	m, err := s.Mark()
	require.NoError(t, err)
	assert.True(t, s.Verify(100))
	_, err = s.Alloc(100)
	require.NoError(t, err)
	assert.Equal(t, 100, s.SizeInUse())

	require.NoError(t, s.PopTo(m))
	assert.Equal(t, 0, s.SizeInUse())
	assert.ErrorIs(t, s.Free(nil), ErrWrongKind)

	_, _ = s.Alloc(8)
	s.Reset()
	assert.Equal(t, 0, s.SizeInUse())

	s.Release()
	// After release, operations should panic
	assert.Panics(t, func() { _, _ = s.Alloc(100) })
}

func TestSafeAllocFunctions(t *testing.T) {
	s, err := NewSafeArena(Linear, 8, 1024)
	require.NoError(t, err)
	defer s.Release()

	ptr, err := SafeAlloc[int](s)
	require.NoError(t, err)
	assert.Equal(t, 0, *ptr)

	slice, err := SafeAllocSlice[int](s, 5)
	require.NoError(t, err)
	assert.Len(t, slice, 5)
}

func TestSafeArenaConcurrency(t *testing.T) {
	const (
		numGoroutines         = 10
		numAllocsPerGoroutine = 100
	)
	// Every allocation takes exactly one 64 byte slot, so exactly half of
	// the requests can succeed.
	s, err := NewSafeArena(Pool, 8, numGoroutines*numAllocsPerGoroutine*64/2, WithSlotSize(64))
	require.NoError(t, err)
	defer s.Release()

	var ok, oom atomic.Int64
	var wg conc.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Go(func() {
			for j := 0; j < numAllocsPerGoroutine; j++ {
				var err error
				switch j % 2 {
				case 0:
					_, err = s.Alloc(64)
				case 1:
					_, err = SafeAlloc[int](s)
				}
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, ErrOutOfMemory):
					oom.Add(1)
				default:
					t.Errorf("unexpected error %v", err)
				}
			}
		})
	}
	wg.Wait()

	assert.EqualValues(t, numGoroutines*numAllocsPerGoroutine/2, ok.Load())
	assert.EqualValues(t, numGoroutines*numAllocsPerGoroutine/2, oom.Load())
	assert.Equal(t, 0, s.Metrics().FreeSlots)
}

func TestIndependentArenasInParallel(t *testing.T) {
	p := pool.NewWithResults[int]().WithErrors().WithMaxGoroutines(8)
	for i := 0; i < 32; i++ {
		p.Go(func() (int, error) {
			a, err := New(Kind(i%int(kindCount)), 8, 4096, WithSlotSize(32))
			if err != nil {
				return 0, err
			}
			defer a.Release()
			n := 0
			for a.Verify(24) {
				if _, err := a.Alloc(24); err != nil {
					return n, err
				}
				n++
			}
			return n, nil
		})
	}
	counts, err := p.Wait()
	require.NoError(t, err)
	require.Len(t, counts, 32)
	for _, n := range counts {
		assert.Greater(t, n, 0)
	}
}
