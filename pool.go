package arena

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// poolStrategy partitions the region into equal slots. Each slot starts on
// a multiple of stride, which is the slot size rounded up to the arena
// alignment. free is a LIFO of slot indices; inUse is a bitmap of the
// slots currently handed out.
type poolStrategy struct {
	slotSize int
	stride   int
	slots    int
	free     []int32
	inUse    []uint64
	peak     int
}

func newPool(alignment, capacity, slotSize int) (*poolStrategy, error) {
	if slotSize < 1 {
		return nil, fmt.Errorf("%w: slot size %d", ErrZeroSize, slotSize)
	}
	if slotSize > capacity {
		return nil, fmt.Errorf("%w: slot size %d exceeds capacity %d", ErrSlotTooLarge, slotSize, capacity)
	}
	stride := alignUp(slotSize, alignment)
	slots := capacity / stride
	// The last slot only has to hold slotSize bytes, not a full stride.
	if slots*stride+slotSize <= capacity {
		slots++
	}
	if slots > 1<<31-1 {
		return nil, fmt.Errorf("%w: %d slots", ErrSlotTooLarge, slots)
	}
	p := &poolStrategy{
		slotSize: slotSize,
		stride:   stride,
		slots:    slots,
		free:     make([]int32, 0, slots),
		inUse:    make([]uint64, (slots+63)/64),
	}
	p.reset()
	return p, nil
}

func (p *poolStrategy) plan(size int) (int, error) {
	if size > p.slotSize {
		return 0, ErrSlotTooLarge
	}
	n := len(p.free)
	if n == 0 {
		return 0, ErrOutOfMemory
	}
	return int(p.free[n-1]) * p.stride, nil
}

func (p *poolStrategy) commit(off, size int) {
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.inUse[idx/64] |= 1 << (idx % 64)
	p.peak = max(p.peak, off+p.slotSize)
}

// release returns the slot starting at off to the free list.
func (p *poolStrategy) release(off int) error {
	if off%p.stride != 0 {
		return ErrInvalidPointer
	}
	idx := off / p.stride
	if idx >= p.slots {
		return ErrInvalidPointer
	}
	word, bit := idx/64, uint64(1)<<(idx%64)
	if p.inUse[word]&bit == 0 {
		return ErrInvalidPointer
	}
	p.inUse[word] &^= bit
	p.free = append(p.free, int32(idx))
	return nil
}

// reset frees every slot, arranged so slot 0 is handed out first.
func (p *poolStrategy) reset() {
	p.free = p.free[:0]
	for i := p.slots - 1; i >= 0; i-- {
		p.free = append(p.free, int32(i))
	}
	clear(p.inUse)
	p.peak = 0
}

func (p *poolStrategy) outstanding() int {
	n := 0
	for _, w := range p.inUse {
		n += bits.OnesCount64(w)
	}
	return n
}

// used counts a full stride per outstanding slot, clipped to the end of the
// last slot.
func (p *poolStrategy) used() int {
	return min((p.slots-len(p.free))*p.stride, p.slots*p.stride-p.stride+p.slotSize)
}
func (p *poolStrategy) dirty() int { return p.peak }

func (p *poolStrategy) appendState(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(p.free)))
	for _, idx := range p.free {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(idx))
	}
	for _, w := range p.inUse {
		buf = binary.LittleEndian.AppendUint64(buf, w)
	}
	return binary.LittleEndian.AppendUint64(buf, uint64(p.peak))
}
