package combfilter

import "errors"

// Errors returned by Filter operations. Callers distinguish them with
// errors.Is; a nil error means success.
var (
	// ErrNotInitialized indicates a call before Init or after Reset.
	ErrNotInitialized = errors.New("comb filter not initialized")

	// ErrInvalidArgument indicates an out-of-range parameter value, an unknown
	// parameter or filter type, a negative sample count or an invalid
	// sample rate or maximum delay.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMemory indicates a missing (nil) input or output buffer.
	ErrMemory = errors.New("missing sample buffer")
)

// ErrorCode is the four-way result classification of a Filter operation.
type ErrorCode int

const (
	// CodeOK means the operation succeeded.
	CodeOK ErrorCode = iota

	// CodeNotInitialized corresponds to ErrNotInitialized.
	CodeNotInitialized

	// CodeInvalidArgument corresponds to ErrInvalidArgument.
	CodeInvalidArgument

	// CodeMemory corresponds to ErrMemory.
	CodeMemory

	// CodeUnknown is returned for errors not produced by this package.
	CodeUnknown
)

// Code classifies err. A nil error maps to CodeOK.
func Code(err error) ErrorCode {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrNotInitialized):
		return CodeNotInitialized
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	case errors.Is(err, ErrMemory):
		return CodeMemory
	default:
		return CodeUnknown
	}
}

// String returns the name of the code.
func (c ErrorCode) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeNotInitialized:
		return "not initialized"
	case CodeInvalidArgument:
		return "invalid argument"
	case CodeMemory:
		return "memory error"
	default:
		return "unknown"
	}
}
