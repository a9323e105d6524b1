package arena

import "encoding/binary"

// Marker is an opaque position in a Stack arena's allocation history.
// It is only valid for the arena that produced it, until the next Reset,
// and only while the allocations it sits on have not been popped.
type Marker struct {
	arena      uint64
	generation uint64
	depth      int
	seq        uint64
	offset     int
}

// Offset returns the number of bytes consumed when the marker was taken.
func (m Marker) Offset() int { return m.offset }

type frame struct {
	end int
	seq uint64
}

// stackStrategy is a bump allocator that remembers the boundary after every
// allocation so it can be rewound. seq never repeats within one arena, which
// lets a popped-then-refilled stack reject markers into the old frames.
type stackStrategy struct {
	bumpStrategy
	frames    []frame
	seq       uint64
	snapshots []Marker
}

func newStack(alignment, capacity int) *stackStrategy {
	return &stackStrategy{bumpStrategy: bumpStrategy{alignment: alignment, capacity: capacity}}
}

func (s *stackStrategy) commit(off, size int) {
	s.bumpStrategy.commit(off, size)
	s.seq++
	s.frames = append(s.frames, frame{end: s.offset, seq: s.seq})
}

func (s *stackStrategy) reset() {
	s.bumpStrategy.reset()
	s.frames = s.frames[:0]
	s.snapshots = s.snapshots[:0]
}

// mark fills in the position part of a marker.
func (s *stackStrategy) mark(m *Marker) {
	m.depth = len(s.frames)
	m.offset = s.offset
	if m.depth > 0 {
		m.seq = s.frames[m.depth-1].seq
	}
}

func (s *stackStrategy) popTo(m Marker) error {
	if m.depth > len(s.frames) {
		return ErrInvalidMarker
	}
	if m.depth == 0 {
		if m.offset != 0 {
			return ErrInvalidMarker
		}
	} else if f := s.frames[m.depth-1]; f.seq != m.seq || f.end != m.offset {
		return ErrInvalidMarker
	}
	s.frames = s.frames[:m.depth]
	s.offset = m.offset
	return nil
}

// pop discards the most recent allocation.
func (s *stackStrategy) pop() error {
	n := len(s.frames)
	if n == 0 {
		return ErrInvalidMarker
	}
	s.frames = s.frames[:n-1]
	s.offset = 0
	if n > 1 {
		s.offset = s.frames[n-2].end
	}
	return nil
}

func (s *stackStrategy) pushSnapshot(m Marker) {
	s.snapshots = append(s.snapshots, m)
}

func (s *stackStrategy) popSnapshot() (Marker, bool) {
	n := len(s.snapshots)
	if n == 0 {
		return Marker{}, false
	}
	m := s.snapshots[n-1]
	s.snapshots = s.snapshots[:n-1]
	return m, true
}

// appendState leaves out the seq counter, which only decides marker validity.
func (s *stackStrategy) appendState(buf []byte) []byte {
	buf = s.bumpStrategy.appendState(buf)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(s.frames)))
	for _, f := range s.frames {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(f.end))
		buf = binary.LittleEndian.AppendUint64(buf, f.seq)
	}
	return binary.LittleEndian.AppendUint64(buf, uint64(len(s.snapshots)))
}
