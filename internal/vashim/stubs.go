package vashim

import "github.com/nvcuvid/vaapi-driver/internal/vacontract"

// This file implements §4.8's explicitly unsupported operations. The spec
// splits them into two shapes: an action the driver cannot perform at all
// (return UNIMPLEMENTED) and an enumeration query the driver can answer
// truthfully by reporting "none" (return SUCCESS with a zero count/empty
// slice). Each stub below is labeled with which shape it took and why;
// see DESIGN.md for the cases that were ambiguous between the two.

// --- Subpictures: action-shaped (UNIMPLEMENTED) ---

func (s *Shim) CreateSubpicture(vacontract.SurfaceFormat) (uint32, vacontract.Status) {
	return 0, vacontract.StatusErrorUnimplemented
}

func (s *Shim) DestroySubpicture(uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

func (s *Shim) SetSubpicturePalette(uint32, []byte) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

func (s *Shim) SetSubpictureChromakey(uint32, uint32, uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

func (s *Shim) SetSubpictureGlobalAlpha(uint32, float32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

func (s *Shim) AssociateSubpicture(uint32, []uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

func (s *Shim) DeassociateSubpicture(uint32, []uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

// QuerySubpictureFormats is query-shaped: "no subpicture formats" is a
// truthful, complete answer, so it succeeds with an empty slice rather
// than failing the whole capability-query path a client may call
// unconditionally during init.
func (s *Shim) QuerySubpictureFormats() ([]vacontract.SurfaceFormat, vacontract.Status) {
	return nil, vacontract.StatusSuccess
}

// --- Display attributes ---

// QueryDisplayAttributes is query-shaped: zero display attributes.
func (s *Shim) QueryDisplayAttributes() (int, vacontract.Status) {
	return 0, vacontract.StatusSuccess
}

func (s *Shim) GetDisplayAttributes() vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

func (s *Shim) SetDisplayAttributes() vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

// --- Surface status/error queries ---
//
// Unlike the enumeration queries above, these report a specific Surface's
// state rather than "how many of X exist" -- there is no truthful zero
// answer, so both are UNIMPLEMENTED rather than a fabricated success.

func (s *Shim) QuerySurfaceStatus(uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

func (s *Shim) QuerySurfaceError(uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

// --- Buffer info / handle acquire-release ---
//
// BufferInfo reports a specific Buffer's backing type/size, same
// reasoning as QuerySurfaceStatus: UNIMPLEMENTED, not a fabricated zero.

func (s *Shim) BufferInfo(uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

func (s *Shim) AcquireBufferHandle(uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

func (s *Shim) ReleaseBufferHandle(uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

// --- Lock/unlock surface (CPU mapping) ---

func (s *Shim) LockSurface(uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

func (s *Shim) UnlockSurface(uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

// --- Multi-frame context (MFC batching) ---

func (s *Shim) CreateMFContext() (uint32, vacontract.Status) {
	return 0, vacontract.StatusErrorUnimplemented
}

func (s *Shim) MFAddContext(uint32, uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

func (s *Shim) MFReleaseContext(uint32, uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

func (s *Shim) MFSubmit(uint32, []uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

// --- Miscellaneous unsupported actions ---

func (s *Shim) CreateBuffer2(vacontract.BufferType, int, int) (uint32, int, vacontract.Status) {
	return 0, 0, vacontract.StatusErrorUnimplemented
}

// QueryProcessingRate is query-shaped: report a processing rate of 0
// rather than UNIMPLEMENTED, since no video post-processing pipeline
// exists for a client to probe the throughput of.
func (s *Shim) QueryProcessingRate() (uint32, vacontract.Status) {
	return 0, vacontract.StatusSuccess
}

func (s *Shim) DeriveImage(uint32) (uint32, vacontract.Status) {
	return 0, vacontract.StatusErrorUnimplemented
}

func (s *Shim) PutImage(uint32, uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}

func (s *Shim) PutSurface(uint32) vacontract.Status {
	return vacontract.StatusErrorUnimplemented
}
