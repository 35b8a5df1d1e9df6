// Package vashim is the translation layer between internal/driver's Go
// error-returning API and the fixed VAStatus-returning external ABI
// (internal/vacontract). It builds the dispatch table a VA-API client
// expects (cmd/vaapi_nvdec wires it into ctx.vtable) and implements the
// operations spec.md §4.8 declares unsupported.
//
// Grounded on the teacher's sentinel-error-to-status mapping style in
// agent/internal/remote/desktop/encoder.go (errors.New sentinels,
// fmt.Errorf("%w: ...") wrapping, errors.Is at the call site), scaled up
// from two sentinels to the full VAStatus taxonomy via driver.Error.Status.
package vashim

import (
	"errors"

	"github.com/nvcuvid/vaapi-driver/internal/driver"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

// StatusFromError translates a driver call's error into the VAStatus a
// VA-API client expects: nil becomes SUCCESS, a *driver.Error keeps its
// carried Status, anything else (a programming error, not a driver.Error)
// is reported as OPERATION_FAILED rather than panicking the shim.
func StatusFromError(err error) vacontract.Status {
	if err == nil {
		return vacontract.StatusSuccess
	}
	var derr *driver.Error
	if errors.As(err, &derr) {
		return derr.Status
	}
	return vacontract.StatusErrorOperationFailed
}
