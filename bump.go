package arena

import "encoding/binary"

// bumpStrategy serves allocations by advancing a single offset.
type bumpStrategy struct {
	alignment int
	capacity  int
	offset    int
	peak      int
}

func newBump(alignment, capacity int) *bumpStrategy {
	return &bumpStrategy{alignment: alignment, capacity: capacity}
}

func (b *bumpStrategy) plan(size int) (int, error) {
	padded := alignUp(b.offset, b.alignment)
	if !fits(padded, size, b.capacity) {
		return 0, ErrOutOfMemory
	}
	return padded, nil
}

func (b *bumpStrategy) commit(off, size int) {
	b.offset = off + size
	b.peak = max(b.peak, b.offset)
}

func (b *bumpStrategy) reset() {
	b.offset = 0
	b.peak = 0
}

func (b *bumpStrategy) used() int  { return b.offset }
func (b *bumpStrategy) dirty() int { return b.peak }

func (b *bumpStrategy) appendState(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(b.offset))
	return binary.LittleEndian.AppendUint64(buf, uint64(b.peak))
}
