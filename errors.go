package arena

// Error is an arena failure with a stable code. All errors returned by this
// package wrap one of the sentinel values below; match them with errors.Is.
type Error struct {
	Code string
	Msg  string
}

func (e *Error) Error() string {
	return "arena: " + e.Code + ": " + e.Msg
}

var (
	// ErrCreationFailed is returned by New when the arena cannot be built.
	// The returned error also wraps the specific reason.
	ErrCreationFailed = &Error{Code: "E400", Msg: "arena creation failed"}

	ErrZeroSize               = &Error{Code: "E101", Msg: "size must be positive"}
	ErrAlignmentNotPowerOfTwo = &Error{Code: "E102", Msg: "alignment must be a power of two"}
	ErrAlignmentTooLarge      = &Error{Code: "E103", Msg: "alignment exceeds maximum"}
	ErrOutOfMemory            = &Error{Code: "E104", Msg: "out of memory"}
	ErrInvalidPointer         = &Error{Code: "E204", Msg: "pointer not owned by this arena"}
	ErrInvalidKind            = &Error{Code: "E401", Msg: "invalid allocator kind"}
	ErrZeroCapacity           = &Error{Code: "E402", Msg: "capacity must be positive"}
	ErrAlignmentTooSmall      = &Error{Code: "E403", Msg: "alignment below platform minimum"}
	ErrSlotTooLarge           = &Error{Code: "E404", Msg: "allocation exceeds pool slot size"}
	ErrInvalidMarker          = &Error{Code: "E501", Msg: "stale or foreign marker"}
	ErrWrongKind              = &Error{Code: "E502", Msg: "operation not valid for allocator kind"}
	ErrNoSnapshot             = &Error{Code: "E503", Msg: "no recorded snapshot to unwind"}
)
