package arena

import "unsafe"

// Alloc returns a pointer to a zeroed T stored inside the arena.
// The returned pointer is valid until the arena is reset or released.
//
// The arena's memory is not scanned by the garbage collector, so T must not
// hold the only reference to Go heap objects. Zero-sized types fail with
// ErrZeroSize.
func Alloc[T any](a *Arena) (*T, error) {
	b, err := allocFor[T](a, 1)
	if err != nil {
		return nil, err
	}
	clear(b)
	return (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// AllocUninitialized returns a *T located in the arena without zeroing memory.
// Arenas other than Scratch are zeroed on Reset, so this only differs from
// Alloc for Scratch arenas and for Pool slots that were freed and reused.
func AllocUninitialized[T any](a *Arena) (*T, error) {
	b, err := allocFor[T](a, 1)
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// AllocSlice allocates a zeroed slice of n elements of type T inside the arena.
// Returns nil, ErrZeroSize if n <= 0.
func AllocSlice[T any](a *Arena, n int) ([]T, error) {
	b, err := allocFor[T](a, n)
	if err != nil {
		return nil, err
	}
	clear(b)
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}

func allocFor[T any](a *Arena, n int) ([]byte, error) {
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if n <= 0 || elemSize == 0 {
		return nil, ErrZeroSize
	}
	if n > MaxCapacity/elemSize {
		return nil, ErrOutOfMemory
	}
	return a.Alloc(elemSize * n)
}

// Copy duplicates src into a new allocation. src is left untouched.
func Copy(a *Arena, src []byte) ([]byte, error) {
	dst, err := a.Alloc(len(src))
	if err != nil {
		return nil, err
	}
	copy(dst, src)
	return dst, nil
}

// Move copies *src into a new allocation, hands the old slice to release
// (if non-nil) and clears *src so the caller cannot reach the old memory.
// On failure *src is left as it was and release is not called.
func Move(a *Arena, src *[]byte, release func([]byte)) ([]byte, error) {
	dst, err := Copy(a, *src)
	if err != nil {
		return nil, err
	}
	old := *src
	*src = nil
	if release != nil {
		release(old)
	}
	return dst, nil
}
