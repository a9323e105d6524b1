// Package arena implements fixed-capacity region allocators for Go.
//
// # Overview
//
// An arena owns one contiguous region of memory, acquired once when the
// arena is created and returned once when it is released. Allocations are
// carved out of that region by one of four strategies:
//
//   - Scratch: bump allocation for short-lived per-frame or per-task data
//   - Linear: bump allocation for data that lives until Reset
//   - Stack: bump allocation that can be rewound to a Marker
//   - Pool: fixed-size slots that can be freed one at a time
//
// Nothing is garbage collected and nothing is compacted. Memory comes back
// in bulk through Reset, or all at once through Release.
//
// # Basic Usage
//
//	a, err := arena.New(arena.Linear, 8, 64<<10)
//	if err != nil {
//		return err
//	}
//	defer a.Release() // Every successful New needs exactly one Release
//
//	// Allocate raw bytes
//	buf, err := a.Alloc(1024)
//
//	// Allocate typed values
//	ptr, err := arena.Alloc[MyStruct](a)
//	slice, err := arena.AllocSlice[int](a, 100)
//
//	// Reset for reuse (O(1) for bump strategies)
//	a.Reset()
//
// # Failures
//
// Every failure is returned as an error wrapping one of the package's
// sentinel values (ErrOutOfMemory, ErrSlotTooLarge, ErrInvalidMarker, ...),
// and a failed call leaves the arena exactly as it was. Verify answers
// whether the next Alloc of a given size would succeed, without changing
// anything:
//
//	if a.Verify(n) {
//		buf, _ := a.Alloc(n) // cannot fail
//	}
//
// Using an arena after Release is a programming error and panics.
//
// # Stack Markers
//
//	m, _ := a.Mark()
//	tmp, _ := a.Alloc(256)
//	_ = a.PopTo(m) // tmp is gone, its bytes are available again
//
// Markers belong to one arena and are invalidated by Reset.
//
// # Thread Safety
//
// Arena is not thread-safe. Use one arena per goroutine, or share a
// SafeArena, which serializes every call with a mutex.
//
// # Memory Layout
//
// On Linux, macOS and the BSDs the region is anonymous mmap memory; elsewhere,
// or with WithHeapBacking, it is a Go byte slice. The region's base is aligned
// to the arena alignment, so an offset that is a multiple of the alignment is
// an aligned address. The garbage collector does not scan arena memory.
//
// # Metrics and Monitoring
//
//	metrics := a.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", metrics.Utilization*100)
//	fmt.Printf("Memory in use: %d bytes\n", metrics.SizeInUse)
//	fmt.Printf("Total capacity: %d bytes\n", metrics.Capacity)
package arena
