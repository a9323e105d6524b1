package arena

import (
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// maxAlign has the strictest alignment of any fundamental Go type.
type maxAlign struct {
	p unsafe.Pointer
	u uint64
	f float64
	c complex128
}

const (
	// MinAlignment is the platform's maximum fundamental alignment. Arenas
	// cannot be created with a smaller alignment.
	MinAlignment = int(unsafe.Alignof(maxAlign{}))

	// MaxAlignment is the largest supported arena alignment (64 KiB).
	MaxAlignment = 1 << 16

	// MaxCapacity keeps offset+padding arithmetic clear of int overflow.
	MaxCapacity = math.MaxInt - MaxAlignment
)

// isPowerOfTwo reports whether x is a positive power of two.
func isPowerOfTwo[T constraints.Integer](x T) bool {
	return x > 0 && x&(x-1) == 0
}

// alignUp rounds off up to the next multiple of align.
// align must be a power of two.
func alignUp[T constraints.Integer](off, align T) T {
	mask := align - 1
	return (off + mask) &^ mask
}

// fits reports whether size bytes starting at the aligned offset padded
// stay within capacity. It never overflows for any non-negative inputs.
func fits(padded, size, capacity int) bool {
	if padded > capacity {
		return false
	}
	return size <= capacity-padded
}
