package arena

import (
	"sync"
)

// SafeArena is a mutex-protected wrapper around Arena for callers that share
// one arena between goroutines. Every operation takes the lock, so a
// Verify followed by Alloc is still two separate critical sections; use
// Alloc's error instead of a prior Verify when racing.
type SafeArena struct {
	mu sync.Mutex
	a  *Arena
}

// NewSafeArena creates a new thread-safe arena. See New.
func NewSafeArena(kind Kind, alignment, capacity int, opts ...Option) (*SafeArena, error) {
	a, err := New(kind, alignment, capacity, opts...)
	if err != nil {
		return nil, err
	}
	return &SafeArena{a: a}, nil
}

// Alloc thread-safely allocates size bytes.
func (s *SafeArena) Alloc(size int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Alloc(size)
}

// Verify thread-safely reports whether Alloc(size) would currently succeed.
func (s *SafeArena) Verify(size int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Verify(size)
}

// Free thread-safely returns a Pool slot.
func (s *SafeArena) Free(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Free(b)
}

// Mark thread-safely captures the position of a Stack arena.
func (s *SafeArena) Mark() (Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Mark()
}

// PopTo thread-safely rewinds a Stack arena to m.
func (s *SafeArena) PopTo(m Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.PopTo(m)
}

// Reset thread-safely returns the arena to its just-created state.
func (s *SafeArena) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Reset()
}

// Release thread-safely releases the region and makes the arena unusable.
func (s *SafeArena) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Release()
}

// Generic allocation functions for SafeArena

// SafeAlloc thread-safely returns a pointer to a zeroed T stored inside the arena.
func SafeAlloc[T any](s *SafeArena) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Alloc[T](s.a)
}

// SafeAllocSlice thread-safely allocates a zeroed slice of n elements of type T.
func SafeAllocSlice[T any](s *SafeArena, n int) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AllocSlice[T](s.a, n)
}
