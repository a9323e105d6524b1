// Package arena implements a fixed-capacity region allocator.
// Typical usage: create one arena per frame or task, carve many temporary
// allocations out of it, then Reset() at the end for O(1) cleanup.
package arena

import (
	"fmt"
	"sync/atomic"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
)

var arenaIDs atomic.Uint64

// Arena is a fixed-capacity region of memory plus one allocation strategy.
// Not goroutine-safe. Use SafeArena for concurrent access.
type Arena struct {
	kind        Kind
	alignment   int
	capacity    int
	region      *region
	strat       strategy
	id          uint64
	generation  uint64
	zeroOnReset bool
	log         *zap.Logger
}

// New creates an arena of the given kind whose allocations are aligned to
// alignment and together never exceed capacity bytes.
//
// alignment must be a power of two between MinAlignment and MaxAlignment
// and capacity must be at least 1. Any violation, or failure to acquire the
// backing memory, returns an error wrapping ErrCreationFailed and leaves
// nothing allocated.
func New(kind Kind, alignment, capacity int, opts ...Option) (*Arena, error) {
	o := options{slotSize: capacity, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := checkParams(kind, alignment, capacity); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreationFailed, err)
	}
	strat, err := newStrategy(kind, alignment, capacity, o.slotSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreationFailed, err)
	}
	r, err := newRegion(capacity, alignment, o.heap)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire %d bytes: %w", ErrCreationFailed, capacity, err)
	}

	zero := kind != Scratch
	if o.zeroOnReset != nil {
		zero = *o.zeroOnReset
	}
	a := &Arena{
		kind:        kind,
		alignment:   alignment,
		capacity:    capacity,
		region:      r,
		strat:       strat,
		id:          arenaIDs.Add(1),
		zeroOnReset: zero,
		log:         o.logger,
	}
	a.log.Debug("arena created",
		zap.Uint64("id", a.id),
		zap.Stringer("kind", kind),
		zap.Int("capacity", capacity),
		zap.Int("alignment", alignment),
		zap.Bool("mmap", r.mmapped),
	)
	return a, nil
}

func checkParams(kind Kind, alignment, capacity int) error {
	switch {
	case !kind.Valid():
		return fmt.Errorf("%w: %d", ErrInvalidKind, uint8(kind))
	case !isPowerOfTwo(alignment):
		return fmt.Errorf("%w: %d", ErrAlignmentNotPowerOfTwo, alignment)
	case alignment < MinAlignment:
		return fmt.Errorf("%w: %d < %d", ErrAlignmentTooSmall, alignment, MinAlignment)
	case alignment > MaxAlignment:
		return fmt.Errorf("%w: %d > %d", ErrAlignmentTooLarge, alignment, MaxAlignment)
	case capacity < 1:
		return fmt.Errorf("%w: %d", ErrZeroCapacity, capacity)
	case capacity > MaxCapacity:
		return fmt.Errorf("%w: capacity %d", ErrOutOfMemory, capacity)
	}
	return nil
}

// Alloc returns size bytes from the arena. The slice's address is aligned
// to the arena alignment and its capacity equals its length.
//
// On failure no state changes. The error is ErrZeroSize for size < 1,
// ErrOutOfMemory when the request (plus padding) does not fit, and
// ErrSlotTooLarge when a Pool arena is asked for more than its slot size.
func (a *Arena) Alloc(size int) ([]byte, error) {
	a.panicIfReleased()
	if size < 1 {
		return nil, ErrZeroSize
	}
	off, err := a.strat.plan(size)
	if err != nil {
		if ce := a.log.Check(zap.DebugLevel, "arena allocation failed"); ce != nil {
			ce.Write(
				zap.Uint64("id", a.id),
				zap.Int("size", size),
				zap.Int("used", a.strat.used()),
				zap.Error(err),
			)
		}
		return nil, err
	}
	a.strat.commit(off, size)
	return a.region.slice(off, size), nil
}

// Verify reports whether Alloc(size) would succeed if called next. It does
// not modify the arena.
func (a *Arena) Verify(size int) bool {
	a.panicIfReleased()
	if size < 1 {
		return false
	}
	_, err := a.strat.plan(size)
	return err == nil
}

// Reset returns the arena to the state it had right after New. The region
// is kept, markers taken before the reset become invalid, and unless the
// arena is a Scratch arena the bytes handed out so far are zeroed.
func (a *Arena) Reset() {
	a.panicIfReleased()
	if a.zeroOnReset {
		a.region.zero(a.strat.dirty())
	}
	a.strat.reset()
	a.generation++
	a.log.Debug("arena reset", zap.Uint64("id", a.id), zap.Uint64("generation", a.generation))
}

// Release returns the region to the system and makes the arena unusable.
// Any subsequent operation, including a second Release, will panic.
func (a *Arena) Release() {
	a.panicIfReleased()
	r := a.region
	a.region = nil
	a.strat = nil
	if err := r.release(); err != nil {
		panic(fmt.Sprintf("arena: release region: %v", err))
	}
	a.log.Debug("arena released", zap.Uint64("id", a.id))
}

// Kind returns the allocation strategy chosen at creation.
func (a *Arena) Kind() Kind { return a.kind }

// Alignment returns the alignment of every allocation.
func (a *Arena) Alignment() int { return a.alignment }

// Generation returns the number of times the arena has been reset.
func (a *Arena) Generation() uint64 { return a.generation }

// Mark captures the current position of a Stack arena.
func (a *Arena) Mark() (Marker, error) {
	s, err := a.stack()
	if err != nil {
		return Marker{}, err
	}
	m := Marker{arena: a.id, generation: a.generation}
	s.mark(&m)
	return m, nil
}

// PopTo discards every allocation made after m was captured. It fails with
// ErrInvalidMarker if m came from another arena, predates the last Reset,
// or points into allocations that were already popped.
func (a *Arena) PopTo(m Marker) error {
	s, err := a.stack()
	if err != nil {
		return err
	}
	if m.arena != a.id || m.generation != a.generation {
		return ErrInvalidMarker
	}
	return s.popTo(m)
}

// Pop discards the most recent allocation of a Stack arena.
func (a *Arena) Pop() error {
	s, err := a.stack()
	if err != nil {
		return err
	}
	return s.pop()
}

// Record pushes the current position of a Stack arena onto its snapshot stack.
func (a *Arena) Record() error {
	m, err := a.Mark()
	if err != nil {
		return err
	}
	a.strat.(*stackStrategy).pushSnapshot(m)
	return nil
}

// Unwind pops the most recent snapshot taken by Record and rewinds the arena
// to it. The snapshot is consumed even if it was invalidated by an earlier
// PopTo below it.
func (a *Arena) Unwind() error {
	s, err := a.stack()
	if err != nil {
		return err
	}
	m, ok := s.popSnapshot()
	if !ok {
		return ErrNoSnapshot
	}
	return a.PopTo(m)
}

func (a *Arena) stack() (*stackStrategy, error) {
	a.panicIfReleased()
	s, ok := a.strat.(*stackStrategy)
	if !ok {
		return nil, fmt.Errorf("%w: %s arena has no markers", ErrWrongKind, a.kind)
	}
	return s, nil
}

// Free returns a slot obtained from a Pool arena. b must be the slice
// returned by Alloc (or a reslice starting at the same address). Freeing a
// slot twice, or memory the arena does not own, fails with ErrInvalidPointer.
func (a *Arena) Free(b []byte) error {
	a.panicIfReleased()
	p, ok := a.strat.(*poolStrategy)
	if !ok {
		return fmt.Errorf("%w: %s arena cannot free individual allocations", ErrWrongKind, a.kind)
	}
	off, ok := a.region.offsetOf(b)
	if !ok {
		return ErrInvalidPointer
	}
	return p.release(off)
}

// Digest fingerprints the arena's bookkeeping together with the bytes handed
// out since the last reset. Two arenas of equal capacity and alignment with
// equal digests serve the same allocations from here on.
func (a *Arena) Digest() uint64 {
	a.panicIfReleased()
	state := make([]byte, 0, 64)
	state = append(state, byte(a.kind))
	state = a.strat.appendState(state)
	h := xxh3.New()
	_, _ = h.Write(state)
	_, _ = h.Write(a.region.buf[:a.strat.dirty()])
	return h.Sum64()
}

// panicIfReleased panics if the arena has been released.
func (a *Arena) panicIfReleased() {
	if a.region == nil {
		panic("arena: use after Release()")
	}
}
