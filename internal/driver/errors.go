package driver

import (
	"fmt"

	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

// Status constants reuse the fixed vacontract.Status values; driver returns
// *Error rather than a bare status so callers (and tests) also get a human
// message, while internal/vashim's dispatch table only ever reads .Status.
const (
	StatusOperationFailed        = vacontract.StatusErrorOperationFailed
	StatusAllocationFailed       = vacontract.StatusErrorAllocationFailed
	StatusInvalidConfig          = vacontract.StatusErrorInvalidConfig
	StatusInvalidContext         = vacontract.StatusErrorInvalidContext
	StatusInvalidSurface         = vacontract.StatusErrorInvalidSurface
	StatusInvalidBuffer          = vacontract.StatusErrorInvalidBuffer
	StatusInvalidImage           = vacontract.StatusErrorInvalidImage
	StatusInvalidImageFormat     = vacontract.StatusErrorInvalidImageFormat
	StatusMaxNumExceeded         = vacontract.StatusErrorMaxNumExceeded
	StatusUnsupportedProfile     = vacontract.StatusErrorUnsupportedProfile
	StatusUnsupportedEntrypoint  = vacontract.StatusErrorUnsupportedEntrypoint
	StatusUnsupportedMemoryType  = vacontract.StatusErrorUnsupportedMemoryType
	StatusHWBusy                 = vacontract.StatusErrorHWBusy
	StatusDecodingError          = vacontract.StatusErrorDecodingError
	StatusUnimplemented          = vacontract.StatusErrorUnimplemented
	StatusInvalidParameter       = vacontract.StatusErrorInvalidParameter
)

// Error is the error type every driver operation returns on failure. It
// carries the VA-API status the caller must translate to, matching §7's
// "errors are returned as VA-API status codes" policy while keeping Go's
// idiomatic error interface for internal plumbing and tests.
type Error struct {
	Status vacontract.Status
	msg    string
}

func (e *Error) Error() string {
	if e.msg == "" {
		return e.Status.String()
	}
	return e.msg
}

func newError(status vacontract.Status, format string, args ...any) *Error {
	return &Error{Status: status, msg: fmt.Sprintf(format, args...)}
}
