// Package export implements the Surface Export Backend: it turns a
// decoded picture's device memory pointer and pitch into an externally
// exportable GPU surface, and describes that surface as a set of DMA-BUF
// plane descriptors. Two implementations share one interface (direct
// DMA-BUF producer, EGL-image producer), selected at driver init from
// configuration.
//
// Grounded on the teacher's encoderBackend interface plus its
// registerHardwareFactory/newBackend selection idiom (try a preferred
// implementation, fall back to the other), generalized from "hardware vs.
// software encode" to "direct vs. EGL export", with the selector driven by
// NVD_BACKEND instead of a PreferHardware flag.
package export

import (
	"fmt"

	"github.com/nvcuvid/vaapi-driver/internal/nvdconfig"
	"github.com/nvcuvid/vaapi-driver/internal/vacontract"
)

// SurfaceDescriptor is the subset of a Surface's attributes the backend
// needs to realise a backing image: its declared format and dimensions.
type SurfaceDescriptor struct {
	Width, Height int
	Format        vacontract.SurfaceFormat
}

// Handle is the opaque backing-image handle a Surface stores. Only the
// export package reads its fields; internal/driver treats it as opaque,
// matching the data model's "backing image handle (opaque to core, owned
// by the export backend)".
type Handle struct {
	desc     SurfaceDescriptor
	planeFDs []int32
	pitches  []uint32
	offsets  []uint32
	fourcc   uint32
	realised bool
}

// Backend is the fixed seven-operation interface spec.md §4.5/§2 names.
type Backend interface {
	InitExporter() error
	RealiseSurface(img **Handle, desc SurfaceDescriptor) error
	ExportCudaPtr(img *Handle, devicePtr uintptr, pitch uint32) error
	FillExportDescriptor(img *Handle, memType vacontract.MemoryType, flags vacontract.ExportFlags) (vacontract.ExportDescriptor, error)
	DetachBackingImage(img **Handle) error
	DestroyAllBackingImages() error
	ReleaseExporter() error
}

// Name identifies which Backend implementation is in use, for diagnostics.
type Name string

const (
	NameDirect Name = "direct"
	NameEGL    Name = "egl"
)

// Select constructs the Backend named by cfg, matching nvdconfig.Backend's
// two valid values. The selector only ever picks one implementation (no
// hardware/software fallback the way the teacher's newBackend does),
// because the fixed contract requires the configured backend exactly or a
// clear init failure, not a silent substitution.
func Select(backend nvdconfig.Backend) (Backend, error) {
	switch backend {
	case nvdconfig.BackendEGL:
		return newEGLBackend(), nil
	case nvdconfig.BackendDirect, "":
		return newDirectBackend(), nil
	default:
		return nil, fmt.Errorf("export: unknown backend %q", backend)
	}
}
