package codec

import "fmt"

// Code is the closed numeric error taxonomy the model file format
// defines. It mirrors the original Err enum bit-for-bit so that a
// caller comparing against the historical numeric values gets the same
// answer this module's predecessor would have given.
type Code uint8

const (
	NoError Code = iota
	ErrOpenFile
	ErrReadFile
	ErrBadFileFormat
	ErrInconsistentData
	ErrMemoryAllocation
	ErrFeatureNotSupported
	ErrBadArgument
)

func (c Code) String() string {
	switch c {
	case NoError:
		return "no error"
	case ErrOpenFile:
		return "open file"
	case ErrReadFile:
		return "read file"
	case ErrBadFileFormat:
		return "bad file format"
	case ErrInconsistentData:
		return "inconsistent data"
	case ErrMemoryAllocation:
		return "memory allocation"
	case ErrFeatureNotSupported:
		return "feature not supported"
	case ErrBadArgument:
		return "bad argument"
	default:
		return fmt.Sprintf("unknown error code %d", uint8(c))
	}
}

// Error wraps a Code as a standard Go error, optionally carrying a
// wrapped cause so %w unwrapping still works at call boundaries, the
// same pairing the teacher applies to its sentinel errors in
// pkg/security (see ErrTokenInvalidChars-style wrapping).
type Error struct {
	Code  Code
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return "codec: " + e.Code.String()
	}
	return fmt.Sprintf("codec: %s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// newErr constructs a *Error, optionally wrapping cause.
func newErr(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Msg: msg, Cause: cause}
}

// NewError is newErr exported for collaborators outside this package —
// pkg/dataset shares this error taxonomy's read-file/bad-file-format/
// bad-argument codes rather than inventing its own.
func NewError(code Code, msg string, cause error) *Error {
	return newErr(code, msg, cause)
}
