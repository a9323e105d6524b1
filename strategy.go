package arena

import "fmt"

// strategy is the bookkeeping of one allocation algorithm. The set of
// implementations is closed: bumpStrategy (Scratch, Linear), stackStrategy
// and poolStrategy.
//
// plan is pure. It returns the offset the next allocation of size bytes
// would land on, or the reason it cannot be served. Alloc is plan followed
// by commit, and Verify is plan alone, so the two always agree.
type strategy interface {
	plan(size int) (int, error)
	commit(off, size int)
	reset()

	// used is the number of bytes currently consumed, padding included.
	used() int
	// dirty is the high-water mark of bytes handed out since the last reset.
	dirty() int
	// appendState appends an encoding of the bookkeeping to b.
	appendState(b []byte) []byte
}

func newStrategy(kind Kind, alignment, capacity, slotSize int) (strategy, error) {
	switch kind {
	case Scratch, Linear:
		return newBump(alignment, capacity), nil
	case Stack:
		return newStack(alignment, capacity), nil
	case Pool:
		return newPool(alignment, capacity, slotSize)
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, uint8(kind))
	}
}
