package arena

import (
	"fmt"
	"strings"
)

// Kind selects the allocation strategy of an arena. It is fixed at creation.
type Kind uint8

const (
	// Scratch is a bump allocator meant for short-lived, per-frame or
	// per-task memory. Its contents are not zeroed on Reset.
	Scratch Kind = iota
	// Linear is a bump allocator for memory that lives until Reset.
	Linear
	// Stack is a bump allocator that can be rewound to a Marker.
	Stack
	// Pool hands out fixed-size slots that can be freed individually.
	Pool

	kindCount
)

var kindNames = [kindCount]string{
	Scratch: "scratch",
	Linear:  "linear",
	Stack:   "stack",
	Pool:    "pool",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k names one of the four strategies.
func (k Kind) Valid() bool {
	return k < kindCount
}

// ParseKind maps a strategy name (case-insensitive) to its Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
