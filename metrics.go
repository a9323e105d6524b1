package arena

// SizeInUse returns the number of bytes currently consumed in the arena.
// This includes internal fragmentation due to alignment.
func (a *Arena) SizeInUse() int {
	if a.region == nil {
		return 0
	}
	return a.strat.used()
}

// Capacity returns the size of the arena's region in bytes.
func (a *Arena) Capacity() int {
	if a.region == nil {
		return 0
	}
	return a.capacity
}

// Available returns the number of bytes not yet consumed. Alignment padding
// may prevent a single allocation of exactly this size from succeeding;
// use Verify for an exact answer.
func (a *Arena) Available() int {
	return a.Capacity() - a.SizeInUse()
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
// Returns 0.0 if the arena has been released.
func (a *Arena) Utilization() float64 {
	capacity := a.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(a.SizeInUse()) / float64(capacity)
}

// TotalSlots returns the slot count of a Pool arena, 0 for other kinds.
func (a *Arena) TotalSlots() int {
	if p, ok := a.pool(); ok {
		return p.slots
	}
	return 0
}

// FreeSlots returns the number of slots a Pool arena can still hand out.
func (a *Arena) FreeSlots() int {
	if p, ok := a.pool(); ok {
		return len(p.free)
	}
	return 0
}

// OutstandingSlots returns the number of allocated, unfreed Pool slots.
func (a *Arena) OutstandingSlots() int {
	if p, ok := a.pool(); ok {
		return p.outstanding()
	}
	return 0
}

// SlotSize returns the fixed slot size of a Pool arena, 0 for other kinds.
func (a *Arena) SlotSize() int {
	if p, ok := a.pool(); ok {
		return p.slotSize
	}
	return 0
}

// Frames returns the number of live allocations on a Stack arena.
func (a *Arena) Frames() int {
	if a.region == nil {
		return 0
	}
	if s, ok := a.strat.(*stackStrategy); ok {
		return len(s.frames)
	}
	return 0
}

func (a *Arena) pool() (*poolStrategy, bool) {
	if a.region == nil {
		return nil, false
	}
	p, ok := a.strat.(*poolStrategy)
	return p, ok
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	return ArenaMetrics{
		Kind:        a.kind,
		SizeInUse:   a.SizeInUse(),
		Capacity:    a.Capacity(),
		Alignment:   a.alignment,
		Generation:  a.generation,
		Utilization: a.Utilization(),
		TotalSlots:  a.TotalSlots(),
		FreeSlots:   a.FreeSlots(),
		Frames:      a.Frames(),
	}
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	Kind        Kind    `json:"kind"`
	SizeInUse   int     `json:"size_in_use"`           // Bytes currently consumed
	Capacity    int     `json:"capacity"`              // Region size in bytes
	Alignment   int     `json:"alignment"`             // Alignment of every allocation
	Generation  uint64  `json:"generation"`            // Number of resets
	Utilization float64 `json:"utilization"`           // Ratio of used to total capacity (0.0-1.0)
	TotalSlots  int     `json:"total_slots,omitempty"` // Pool only
	FreeSlots   int     `json:"free_slots,omitempty"`  // Pool only
	Frames      int     `json:"frames,omitempty"`      // Stack only
}

// Thread-safe metrics for SafeArena

// SizeInUse thread-safely returns the number of bytes currently consumed.
func (s *SafeArena) SizeInUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.SizeInUse()
}

// Capacity thread-safely returns the size of the region.
func (s *SafeArena) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Capacity()
}

// Utilization thread-safely returns the ratio of bytes in use to total capacity.
func (s *SafeArena) Utilization() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Utilization()
}

// Metrics thread-safely returns a snapshot of arena statistics.
func (s *SafeArena) Metrics() ArenaMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Metrics()
}
