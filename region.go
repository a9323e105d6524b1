package arena

import (
	"errors"
	"fmt"
	"math/bits"
	"os"
	"unsafe"
)

var (
	errMmapUnsupported = errors.New("arena: mmap not supported on this platform")
	errHeapTooLarge    = errors.New("arena: region too large for the Go heap")
)

// maxHeapRegion bounds heap-backed regions well below what makeslice
// accepts (64 TiB on 64-bit platforms, 1 GiB on 32-bit ones).
const maxHeapRegion = 1 << (bits.UintSize/2 + 14)

// region is the fixed-capacity backing memory of an arena. buf is carved
// out of raw so that its first byte sits on the arena alignment.
type region struct {
	buf     []byte
	raw     []byte
	mmapped bool
}

// newRegion acquires capacity usable bytes aligned to alignment. It maps
// anonymous memory unless heap is set or the platform has no mmap, in which
// case the bytes come from the Go heap.
func newRegion(capacity, alignment int, heap bool) (*region, error) {
	if !heap {
		r, err := mapAligned(capacity, alignment)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, errMmapUnsupported) {
			return nil, err
		}
	}
	if capacity > maxHeapRegion-alignment {
		return nil, fmt.Errorf("%w: %d bytes", errHeapTooLarge, capacity)
	}
	raw := make([]byte, capacity+alignment-1)
	return carve(raw, capacity, alignment, false), nil
}

func mapAligned(capacity, alignment int) (*region, error) {
	size := capacity
	if alignment > os.Getpagesize() {
		size += alignment - 1
	}
	size = alignUp(size, os.Getpagesize())
	raw, err := mapRegion(size)
	if err != nil {
		return nil, err
	}
	return carve(raw, capacity, alignment, true), nil
}

func carve(raw []byte, capacity, alignment int, mmapped bool) *region {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	start := int(alignUp(addr, uintptr(alignment)) - addr)
	return &region{
		buf:     raw[start : start+capacity : start+capacity],
		raw:     raw,
		mmapped: mmapped,
	}
}

// release returns the memory to the system. The region is unusable afterwards.
func (r *region) release() error {
	raw := r.raw
	r.buf, r.raw = nil, nil
	if r.mmapped {
		return unmapRegion(raw)
	}
	return nil
}

func (r *region) base() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(r.buf)))
}

// slice returns size bytes at off, capped so appends cannot spill into
// neighbouring allocations.
func (r *region) slice(off, size int) []byte {
	return r.buf[off : off+size : off+size]
}

// offsetOf reports where b starts within the region.
func (r *region) offsetOf(b []byte) (int, bool) {
	if cap(b) == 0 {
		return 0, false
	}
	p := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	base := r.base()
	if p < base || p >= base+uintptr(len(r.buf)) {
		return 0, false
	}
	return int(p - base), true
}

// zero clears the first n bytes of the region.
func (r *region) zero(n int) {
	clear(r.buf[:n])
}
