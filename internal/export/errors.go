package export

import "errors"

// Sentinel errors the backends' FillExportDescriptor returns, matching the
// teacher's ErrInvalidCodec-style sentinel-error convention. internal/driver
// checks the same guards itself before calling a backend and reports any
// backend failure as INVALID_SURFACE; nothing maps these sentinels to a
// VAStatus directly.
var (
	errUnsupportedMemoryType = errors.New("export: memory type does not include DRM_PRIME_2")
	errInvalidSurface        = errors.New("export: surface not realised or missing SEPARATE_LAYERS")
)

// IsUnsupportedMemoryType reports whether err is the export memory-type
// guard failure FillExportDescriptor returns.
func IsUnsupportedMemoryType(err error) bool { return errors.Is(err, errUnsupportedMemoryType) }

// IsInvalidSurface reports whether err is the export surface-state guard
// failure FillExportDescriptor returns.
func IsInvalidSurface(err error) bool { return errors.Is(err, errInvalidSurface) }
